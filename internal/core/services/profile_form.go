package services

import (
	"context"
	"strings"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
	"github.com/kamal-hamza/assetctl/internal/core/ports"
)

// ProfileDraft is the editable form of the acting user's profile
type ProfileDraft struct {
	FullName string `form:"fullName" validate:"required"`
	Email    string `form:"email" validate:"required"`
	Phone    string `form:"phone"`
	Base     string `form:"base"`
}

// ProfileSaver receives the updated user, normally Shell.UpdateUser
type ProfileSaver func(user domain.User) error

func profileFields(*ProfileDraft) []Field[ProfileDraft] {
	return []Field[ProfileDraft]{
		{Name: "fullName", Label: "Full Name", Required: true,
			Get: func(d *ProfileDraft) string { return d.FullName }, Set: func(d *ProfileDraft, v string) { d.FullName = v }},
		{Name: "email", Label: "Email", Required: true,
			Get: func(d *ProfileDraft) string { return d.Email }, Set: func(d *ProfileDraft, v string) { d.Email = v }},
		{Name: "phone", Label: "Phone",
			Get: func(d *ProfileDraft) string { return d.Phone }, Set: func(d *ProfileDraft, v string) { d.Phone = v }},
		{Name: "base", Label: "Base", Kind: FieldSelect, Source: sourceBases,
			Locked: func(s FormState) bool {
				return s.Can == nil || !s.Can(ResourceProfileBase, ActionUpdate)
			},
			Get: func(d *ProfileDraft) string { return d.Base }, Set: func(d *ProfileDraft, v string) { d.Base = v }},
	}
}

// NewProfileForm describes the profile dialog. It always edits the acting
// user; the base can only be changed by admins.
func NewProfileForm(auth ports.AuthGateway, save ProfileSaver) FormDescriptor[domain.User, ProfileDraft] {
	return FormDescriptor[domain.User, ProfileDraft]{
		Resource: ResourceProfile,
		Fields:   profileFields,
		Defaults: func(fc FormContext) ProfileDraft {
			return ProfileDraft{
				FullName: fc.User.FullName,
				Email:    fc.User.Email,
				Phone:    fc.User.Phone,
				Base:     fc.User.Base,
			}
		},
		FromEntity: func(u domain.User) ProfileDraft {
			return ProfileDraft{FullName: u.FullName, Email: u.Email, Phone: u.Phone, Base: u.Base}
		},
		LoadChoices: func(ctx context.Context, fc FormContext) (Choices, error) {
			return Choices{sourceBases: staticChoices(fc.Bases)}, nil
		},
		Create: func(ctx context.Context, d ProfileDraft) error {
			return updateProfile(ctx, auth, save, d)
		},
		Update: func(ctx context.Context, _ domain.User, d ProfileDraft) error {
			return updateProfile(ctx, auth, save, d)
		},
	}
}

func updateProfile(ctx context.Context, auth ports.AuthGateway, save ProfileSaver, d ProfileDraft) error {
	user, err := auth.UpdateProfile(ctx, domain.ProfileUpdate{
		FullName: strings.TrimSpace(d.FullName),
		Email:    strings.TrimSpace(d.Email),
		Phone:    strings.TrimSpace(d.Phone),
		Base:     d.Base,
	})
	if err != nil {
		return err
	}
	if save != nil && user != nil {
		return save(*user)
	}
	return nil
}
