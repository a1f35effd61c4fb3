package listings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"autotelex-sync/internal/attachments"
	"autotelex-sync/internal/feed"
	"autotelex-sync/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Listing{}, &models.Attachment{}))
	svc := &Service{
		DB:             db,
		Resolver:       &attachments.Resolver{DB: db, UploadDir: t.TempDir()},
		SiteURL:        "https://cars.example",
		RemoveOnDelete: true,
	}
	return svc, db
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func TestAddChangeDeleteScenario(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	out, err := svc.Apply(ctx, feed.Fields{
		Action:     feed.ActionAdd,
		ExternalID: "V1",
		Title:      strPtr("Volvo"),
		Price:      intPtr(5000),
		Sold:       boolPtr(false),
	})
	require.NoError(t, err)
	require.True(t, out.OK)
	assert.Contains(t, out.Detail, "https://cars.example/listings/")

	var listing models.Listing
	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	assert.Equal(t, "Volvo", listing.Title)
	require.NotNil(t, listing.Sold)
	assert.False(t, *listing.Sold)
	options := listing.ListingOptions.Data()
	require.NotNil(t, options.Price.Value)
	assert.Equal(t, 5000, *options.Price.Value)

	out, err = svc.Apply(ctx, feed.Fields{
		Action:     feed.ActionChange,
		ExternalID: "V1",
		Price:      intPtr(4500),
	})
	require.NoError(t, err)
	require.True(t, out.OK)

	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	assert.Equal(t, "Volvo", listing.Title, "absent fields must stay untouched")
	options = listing.ListingOptions.Data()
	require.NotNil(t, options.Price.Value)
	assert.Equal(t, 4500, *options.Price.Value)

	out, err = svc.Apply(ctx, feed.Fields{Action: feed.ActionDelete, ExternalID: "V1"})
	require.NoError(t, err)
	require.True(t, out.OK)

	err = db.Where("external_id = ?", "V1").First(&listing).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestAddDuplicateExternalID(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	out, err := svc.Apply(ctx, feed.Fields{Action: feed.ActionAdd, ExternalID: "V1", Title: strPtr("First")})
	require.NoError(t, err)
	require.True(t, out.OK)

	out, err = svc.Apply(ctx, feed.Fields{Action: feed.ActionAdd, ExternalID: "V1", Title: strPtr("Second")})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "listing already exists", out.Detail)

	var listing models.Listing
	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	assert.Equal(t, "First", listing.Title, "conflicting add must not mutate the existing record")
}

func TestChangeUnknownExternalID(t *testing.T) {
	svc, _ := setupService(t)
	out, err := svc.Apply(context.Background(), feed.Fields{Action: feed.ActionChange, ExternalID: "nope"})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "listing not found", out.Detail)
}

func TestDeleteUnknownExternalID(t *testing.T) {
	svc, _ := setupService(t)
	out, err := svc.Apply(context.Background(), feed.Fields{Action: feed.ActionDelete, ExternalID: "nope"})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "listing not found", out.Detail)
}

func TestChangePreservesOriginalPrice(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	out, err := svc.Apply(ctx, feed.Fields{Action: feed.ActionAdd, ExternalID: "V1", Price: intPtr(5000)})
	require.NoError(t, err)
	require.True(t, out.OK)

	// The site sets price.original; a feed price update must not clobber it.
	var listing models.Listing
	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	options := listing.ListingOptions.Data()
	options.Price.Original = "5999"
	require.NoError(t, db.Model(&listing).Update("listing_options", models.NewListingOptions(options)).Error)

	out, err = svc.Apply(ctx, feed.Fields{Action: feed.ActionChange, ExternalID: "V1", Price: intPtr(4500)})
	require.NoError(t, err)
	require.True(t, out.OK)

	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	options = listing.ListingOptions.Data()
	assert.Equal(t, "5999", options.Price.Original)
	require.NotNil(t, options.Price.Value)
	assert.Equal(t, 4500, *options.Price.Value)
}

func TestChangeReplacesGalleryWholesale(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	out, err := svc.Apply(ctx, feed.Fields{
		Action:     feed.ActionAdd,
		ExternalID: "V1",
		ImageURLs:  []string{srv.URL + "/1.jpg", srv.URL + "/2.jpg"},
	})
	require.NoError(t, err)
	require.True(t, out.OK)

	var listing models.Listing
	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	require.Len(t, []uint(listing.GalleryImages), 2)
	firstGallery := []uint(listing.GalleryImages)

	out, err = svc.Apply(ctx, feed.Fields{
		Action:     feed.ActionChange,
		ExternalID: "V1",
		ImageURLs:  []string{srv.URL + "/2.jpg"},
	})
	require.NoError(t, err)
	require.True(t, out.OK)

	require.NoError(t, db.Where("external_id = ?", "V1").First(&listing).Error)
	require.Len(t, []uint(listing.GalleryImages), 1)
	assert.Equal(t, firstGallery[1], []uint(listing.GalleryImages)[0], "re-sent URL must resolve to the same attachment")
}

func TestDeleteLeavesAttachments(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte("img"))
	}))
	defer srv.Close()

	out, err := svc.Apply(ctx, feed.Fields{Action: feed.ActionAdd, ExternalID: "V1", ImageURLs: []string{srv.URL + "/1.jpg"}})
	require.NoError(t, err)
	require.True(t, out.OK)

	out, err = svc.Apply(ctx, feed.Fields{Action: feed.ActionDelete, ExternalID: "V1"})
	require.NoError(t, err)
	require.True(t, out.OK)

	var count int64
	db.Model(&models.Attachment{}).Count(&count)
	assert.Equal(t, int64(1), count, "attachments are not cascaded")
}

func TestDeleteDisabledKeepsListing(t *testing.T) {
	svc, db := setupService(t)
	svc.RemoveOnDelete = false
	ctx := context.Background()

	out, err := svc.Apply(ctx, feed.Fields{Action: feed.ActionAdd, ExternalID: "V1"})
	require.NoError(t, err)
	require.True(t, out.OK)

	out, err = svc.Apply(ctx, feed.Fields{Action: feed.ActionDelete, ExternalID: "V1"})
	require.NoError(t, err)
	assert.True(t, out.OK)

	var count int64
	db.Model(&models.Listing{}).Where("external_id = ?", "V1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestDuplicateExternalIDsCountAsNotFound(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	// Two rows with the same external id simulate a corrupted store; neither
	// change nor delete may pick one arbitrarily. The store does not enforce
	// uniqueness, the pipeline's add path does.
	require.NoError(t, db.Create(&models.Listing{ExternalID: "V1"}).Error)
	require.NoError(t, db.Create(&models.Listing{ExternalID: "V1"}).Error)

	out, err := svc.Apply(ctx, feed.Fields{Action: feed.ActionChange, ExternalID: "V1", Title: strPtr("x")})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "listing not found", out.Detail)
}
