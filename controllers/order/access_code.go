package orderControllers

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/models"
	"github.com/denookoyo/marketplace-api/pkg/apperr"
)

// accessCodeBytes gives 128 bits of randomness, URL-safe encoded to 22 chars.
const accessCodeBytes = 16

func newAccessCode() (string, error) {
	buf := make([]byte, accessCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// issueAccessCode mints a code no existing order holds. Collisions are
// practically impossible at this entropy; the retry loop and the unique index
// on orders.access_code guard the invariant anyway.
func issueAccessCode(tx *gorm.DB) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := newAccessCode()
		if err != nil {
			return "", err
		}
		var taken int64
		if err := tx.Model(&models.Order{}).Where("access_code = ?", code).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not mint a unique access code")
}

// ResolveAccessCode returns the id of the order the code was issued for.
// Exact match only.
func ResolveAccessCode(db *gorm.DB, code string) (uint, error) {
	var order models.Order
	err := db.Select("id").Where("access_code = ?", code).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("no order for that access code")
		}
		return 0, apperr.Internal(err)
	}
	return order.ID, nil
}
