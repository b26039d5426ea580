package books

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/schoolshelf/librarian/internal/entities"
)

// genreAbbreviation returns the first three letters of the genre, uppercased.
func genreAbbreviation(genre string) string {
	runes := []rune(strings.ToUpper(genre))
	if len(runes) > 3 {
		runes = runes[:3]
	}
	return string(runes)
}

// claimBookCode generates the next code in the NNNN/YY-GEN format for the
// current year. The per-year sequence lives in a dedicated counter row that is
// claimed inside the caller's transaction, so concurrent creates cannot hand
// out the same number. On first use of a year the counter is seeded from the
// highest pre-existing code with that year suffix, which keeps numbering
// intact for catalogs migrated from older systems.
func claimBookCode(tx *gorm.DB, genre string, now time.Time) (string, error) {
	yearSuffix := now.Format("06")

	var seq entities.BookCodeSequence
	err := tx.Where("year_suffix = ?", yearSuffix).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		highest, seedErr := highestCodeNumber(tx, yearSuffix)
		if seedErr != nil {
			return "", seedErr
		}
		seq = entities.BookCodeSequence{YearSuffix: yearSuffix, NextNumber: highest + 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", fmt.Errorf("failed to seed code sequence for year %s: %w", yearSuffix, err)
		}
	} else if err != nil {
		return "", err
	}

	number := seq.NextNumber
	err = tx.Model(&entities.BookCodeSequence{}).
		Where("year_suffix = ?", yearSuffix).
		Update("next_number", number+1).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance code sequence for year %s: %w", yearSuffix, err)
	}

	return fmt.Sprintf("%04d/%s-%s", number, yearSuffix, genreAbbreviation(genre)), nil
}

// highestCodeNumber finds the largest sequence number already used for the
// year suffix, including soft-deleted books (their codes stay reserved).
// Codes are zero-padded, so lexicographic ordering matches numeric ordering.
func highestCodeNumber(tx *gorm.DB, yearSuffix string) (int, error) {
	var book entities.Book
	err := tx.Unscoped().
		Where("code LIKE ?", "%/"+yearSuffix+"-%").
		Order("code DESC").
		First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	prefix, _, found := strings.Cut(book.Code, "/")
	if !found {
		return 0, nil
	}
	number, err := strconv.Atoi(prefix)
	if err != nil {
		return 0, nil
	}
	return number, nil
}
