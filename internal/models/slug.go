package models

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

const maxSlugBase = 200

// Slugify folds title to lowercase ASCII. Whitespace and dash runs become a
// single dash, other punctuation is dropped.
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(title) {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(unicode.ToLower(r))
			dash = false
		case unicode.IsSpace(r) || r == '-':
			if !dash {
				b.WriteByte('-')
				dash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-_")
	if len(slug) > maxSlugBase {
		slug = strings.TrimRight(slug[:maxSlugBase], "-_")
	}
	return slug
}

// uniqueSlug returns base, or base-N with the smallest N >= 2 that is not
// yet used in table.
func uniqueSlug(tx *gorm.DB, table, base string) (string, error) {
	db := tx.Session(&gorm.Session{NewDB: true})
	candidate := base
	for n := 2; ; n++ {
		var count int64
		if err := db.Table(table).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

func fillSlug(tx *gorm.DB, table, current, title, fallback string) (string, error) {
	if current != "" {
		return current, nil
	}
	base := Slugify(title)
	if base == "" {
		base = fallback
	}
	return uniqueSlug(tx, table, base)
}
