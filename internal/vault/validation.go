package vault

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/MKhiriev/cryptosafe/models"
)

// normalize trims s and cuts it to at most limit characters.
func normalize(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func normalizeInput(in models.EntryInput) models.EntryInput {
	return models.EntryInput{
		Title:    normalize(in.Title, models.MaxTitleLength),
		Username: normalize(in.Username, models.MaxUsernameLength),
		Password: in.Password,
		URL:      normalize(in.URL, models.MaxURLLength),
		Notes:    normalize(in.Notes, models.MaxNotesLength),
		Tags:     normalize(in.Tags, models.MaxTagsLength),
	}
}

func normalizeField(p *string, limit int) *string {
	if p == nil {
		return nil
	}
	v := normalize(*p, limit)
	return &v
}

func normalizeUpdate(upd models.EntryUpdate) models.EntryUpdate {
	return models.EntryUpdate{
		Title:    normalizeField(upd.Title, models.MaxTitleLength),
		Username: normalizeField(upd.Username, models.MaxUsernameLength),
		Password: upd.Password,
		URL:      normalizeField(upd.URL, models.MaxURLLength),
		Notes:    normalizeField(upd.Notes, models.MaxNotesLength),
		Tags:     normalizeField(upd.Tags, models.MaxTagsLength),
	}
}

// validateEntry checks the struct tags of a fully assembled entry and maps
// failures to [ErrValidation].
func validateEntry(v *validator.Validate, entry models.VaultEntry) error {
	err := v.Struct(entry)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
