package handler

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"pressroom/internal/auth"
	errs "pressroom/internal/errors"
	"pressroom/internal/model"
	"pressroom/internal/patch"
	"pressroom/internal/service"
	"pressroom/internal/session"
	"pressroom/internal/upload"
	"pressroom/internal/validation"
)

// defaultAvatar is applied when an identity saves a profile image form
// without picking a file and has no image yet.
const defaultAvatar = "/images/avatar.png"

// ProfileHandler serves the identity's own profile pages.
type ProfileHandler struct {
	base
	authService service.AuthService
	profiles    service.ProfileService
	articles    service.ArticleService
	pipeline    *validation.Pipeline
	uploads     *upload.Saver
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(authService service.AuthService, profiles service.ProfileService, articles service.ArticleService, pipeline *validation.Pipeline, uploads *upload.Saver, flash session.Flash) *ProfileHandler {
	return &ProfileHandler{
		base:        base{flash: flash},
		authService: authService,
		profiles:    profiles,
		articles:    articles,
		pipeline:    pipeline,
		uploads:     uploads,
	}
}

var profileRules = []validation.Rule{
	{Field: "email", Check: validation.Required, Message: "Your e-mail is required!"},
	{Field: "email", Check: validation.Email, Message: "Please provide a valid e-mail!"},
}

// Show renders the identity's profile along with the articles it wrote.
// An identity that never edited a profile sees the page without profile
// details.
func (h *ProfileHandler) Show(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	ctx := c.Request().Context()

	profile, err := h.profiles.GetByAuthor(ctx, identity.ID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	articles, err := h.articles.ListByAuthor(ctx, identity.ID)
	if err != nil {
		return err
	}
	return h.render(c, "profile.html", echo.Map{
		"Title":    "Profile",
		"Profile":  profile,
		"Articles": articles,
	})
}

// EditForm renders the edit form pre-filled from the stored records.
func (h *ProfileHandler) EditForm(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	fields := map[string]string{"email": identity.Email}

	profile, err := h.profiles.GetByAuthor(c.Request().Context(), identity.ID)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	if profile != nil {
		if profile.Phone != nil {
			fields["phone"] = *profile.Phone
		}
		if profile.Position != nil {
			fields["position"] = *profile.Position
		}
	}
	return h.render(c, "profile_form.html", echo.Map{
		"Title": "Edit Profile",
		"Form":  fields,
	})
}

// Edit updates the identity's email and upserts the profile in one
// submission. Only fields actually submitted end up in the patch, and a
// submission without a file leaves any stored image untouched.
func (h *ProfileHandler) Edit(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	fields := map[string]string{
		"email":    strings.TrimSpace(c.FormValue("email")),
		"phone":    strings.TrimSpace(c.FormValue("phone")),
		"position": strings.TrimSpace(c.FormValue("position")),
	}

	if result := h.pipeline.Run(fields, profileRules); !result.OK() {
		return h.render(c, "profile_form.html", echo.Map{
			"Title":  "Edit Profile",
			"Errors": result,
			"Form":   fields,
		})
	}

	p := model.ProfilePatch{}
	params, _ := c.FormParams()
	if _, ok := params["phone"]; ok {
		p.Phone = patch.Set(fields["phone"])
	}
	if _, ok := params["position"]; ok {
		p.Position = patch.Set(fields["position"])
	}

	if fh, err := c.FormFile("profileImage"); err == nil {
		asset, uerr := h.uploads.ReceiveImage(fh)
		if uerr != nil {
			return h.render(c, "profile_form.html", echo.Map{
				"Title":       "Edit Profile",
				"UploadError": uerr.Error(),
				"Form":        fields,
			})
		}
		p.ImageRef = patch.Set(asset.Ref)
	}

	ctx := c.Request().Context()
	if err := h.authService.UpdateEmail(ctx, identity.ID, fields["email"]); err != nil {
		return err
	}
	if _, err := h.profiles.Upsert(ctx, identity.ID, p); err != nil {
		return err
	}

	return h.flashRedirect(c, "success", "Your profile has been updated!", "/profile")
}

// ImageForm renders the standalone image upload form.
func (h *ProfileHandler) ImageForm(c echo.Context) error {
	return h.render(c, "profile_image.html", echo.Map{"Title": "Profile Image"})
}

// Image stores a new profile image. Submitting without a file is not a
// crash and not an error page: an identity with no image yet gets the
// default avatar, an existing image stays untouched.
func (h *ProfileHandler) Image(c echo.Context) error {
	identity, _ := auth.IdentityFrom(c)
	ctx := c.Request().Context()

	fh, err := c.FormFile("profileImage")
	if err != nil {
		profile, perr := h.profiles.GetByAuthor(ctx, identity.ID)
		if perr != nil && !errors.Is(perr, errs.ErrNotFound) {
			return perr
		}
		if profile == nil || profile.ImageRef == nil {
			p := model.ProfilePatch{ImageRef: patch.Set(defaultAvatar)}
			if _, err := h.profiles.Upsert(ctx, identity.ID, p); err != nil {
				return err
			}
		}
		return h.flashRedirect(c, "success", "Your profile has been updated!", "/profile")
	}

	asset, err := h.uploads.ReceiveImage(fh)
	if err != nil {
		return h.render(c, "profile_image.html", echo.Map{
			"Title":       "Profile Image",
			"UploadError": err.Error(),
		})
	}

	p := model.ProfilePatch{ImageRef: patch.Set(asset.Ref)}
	if _, err := h.profiles.Upsert(ctx, identity.ID, p); err != nil {
		return err
	}
	return h.flashRedirect(c, "success", "Your profile image has been uploaded!", "/profile")
}
