package listings

import (
	"context"
	"fmt"

	"autotelex-sync/internal/attachments"
	"autotelex-sync/internal/feed"
	"autotelex-sync/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Outcome is the result of applying a feed notification. OK false means the
// notification was rejected with Detail as the reason; errors returned next
// to an Outcome are internal faults, not rejections.
type Outcome struct {
	OK     bool
	Detail string
}

// Service applies feed notifications against the content store.
type Service struct {
	DB       *gorm.DB
	Resolver *attachments.Resolver

	// SiteURL is the public site base used to build listing permalinks.
	SiteURL string
	// RemoveOnDelete controls whether a delete notification removes the
	// listing from the site or is acknowledged without effect.
	RemoveOnDelete bool
}

// Apply dispatches one notification. Anything that is not an add or a change
// is handled as a delete; the accepted action set is enforced upstream, so
// this default only fires for "delete" today, but the fallthrough is
// load-bearing for the feed provider's historical behavior.
func (s *Service) Apply(ctx context.Context, f feed.Fields) (Outcome, error) {
	switch f.Action {
	case feed.ActionAdd:
		return s.addListing(ctx, f)
	case feed.ActionChange:
		return s.changeListing(ctx, f)
	default:
		return s.deleteListing(ctx, f)
	}
}

func (s *Service) addListing(ctx context.Context, f feed.Fields) (Outcome, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Listing{}).Where("external_id = ?", f.ExternalID).Count(&count).Error; err != nil {
		return Outcome{}, err
	}
	if count > 0 {
		return Outcome{OK: false, Detail: "listing already exists"}, nil
	}

	listing := &models.Listing{
		ExternalID: f.ExternalID,
		Title:      deref(f.Title),
		Notes:      deref(f.Notes),
		Sold:       f.Sold,
		ListingOptions: models.NewListingOptions(models.ListingOptions{
			Price: models.PriceOption{Value: f.Price},
		}),
	}
	if f.LicensePlate != nil {
		listing.LicensePlate = *f.LicensePlate
	}
	if err := s.DB.WithContext(ctx).Create(listing).Error; err != nil {
		return Outcome{}, err
	}

	ids := s.Resolver.Resolve(ctx, f.ImageURLs)
	if err := s.DB.WithContext(ctx).Model(listing).Update("gallery_images", models.NewGallery(ids)).Error; err != nil {
		return Outcome{}, err
	}

	log.Info().Str("external_id", f.ExternalID).Uint("listing_id", listing.ID).Msg("Listing created")
	return Outcome{OK: true, Detail: s.permalink(listing.ID)}, nil
}

func (s *Service) changeListing(ctx context.Context, f feed.Fields) (Outcome, error) {
	listing, err := s.findByExternalID(ctx, f.ExternalID)
	if err != nil {
		return Outcome{}, err
	}
	if listing == nil {
		return Outcome{OK: false, Detail: "listing not found"}, nil
	}

	updates := map[string]interface{}{}
	if f.Title != nil {
		updates["title"] = *f.Title
	}
	if f.Notes != nil {
		updates["notes"] = *f.Notes
	}
	if f.LicensePlate != nil {
		updates["license_plate"] = *f.LicensePlate
	}
	if f.Sold != nil {
		updates["sold"] = *f.Sold
	}
	if f.Price != nil {
		options := listing.ListingOptions.Data()
		options.Price.Value = f.Price
		updates["listing_options"] = models.NewListingOptions(options)
	}

	// The gallery is not patched: every change notification supersedes it.
	ids := s.Resolver.Resolve(ctx, f.ImageURLs)
	updates["gallery_images"] = models.NewGallery(ids)

	if err := s.DB.WithContext(ctx).Model(listing).Updates(updates).Error; err != nil {
		return Outcome{}, err
	}

	log.Info().Str("external_id", f.ExternalID).Uint("listing_id", listing.ID).Msg("Listing updated")
	return Outcome{OK: true, Detail: "listing updated"}, nil
}

func (s *Service) deleteListing(ctx context.Context, f feed.Fields) (Outcome, error) {
	listing, err := s.findByExternalID(ctx, f.ExternalID)
	if err != nil {
		return Outcome{}, err
	}
	if listing == nil {
		return Outcome{OK: false, Detail: "listing not found"}, nil
	}

	if !s.RemoveOnDelete {
		log.Info().Str("external_id", f.ExternalID).Msg("Delete notification acknowledged, removal disabled")
		return Outcome{OK: true, Detail: "listing kept on site"}, nil
	}

	// Hard delete; attachments live on independently.
	if err := s.DB.WithContext(ctx).Delete(listing).Error; err != nil {
		return Outcome{}, err
	}

	log.Info().Str("external_id", f.ExternalID).Uint("listing_id", listing.ID).Msg("Listing deleted")
	return Outcome{OK: true, Detail: "listing deleted"}, nil
}

// findByExternalID returns the single listing carrying the external id.
// Anything other than exactly one match counts as not found, so a corrupted
// store with duplicate external ids can never be mutated by the feed.
func (s *Service) findByExternalID(ctx context.Context, externalID string) (*models.Listing, error) {
	var matches []models.Listing
	if err := s.DB.WithContext(ctx).Where("external_id = ?", externalID).Find(&matches).Error; err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *Service) permalink(id uint) string {
	return fmt.Sprintf("%s/listings/%d", s.SiteURL, id)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
