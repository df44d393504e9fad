package services

import (
	"strconv"
	"testing"

	"github.com/azayd/website/backend/internal/models"
	"github.com/azayd/website/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewDB(t)
	InitSystemLogger(db)
	t.Cleanup(func() { InitSystemLogger(nil) })
	return db
}

func createServices(t *testing.T, db *gorm.DB, items ...models.Service) []models.Service {
	t.Helper()
	for i := range items {
		if items[i].Description == "" {
			items[i].Description = "Description of " + items[i].Title
		}
		require.NoError(t, db.Create(&items[i]).Error)
	}
	return items
}

func price(v float64) *float64 { return &v }

func media(name string) string { return "/media/" + name }

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
