package acquire

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/model"
	"github.com/prospecta/leads-cli/pkg/gmaps"
)

// detailFields is the Place Details field mask requested per result.
var detailFields = []string{
	"name", "formatted_address", "formatted_phone_number", "website",
	"rating", "user_ratings_total", "opening_hours", "geometry",
	"types", "photos",
}

const maxPhotos = 3

// APISearcher implements Searcher via the Google Maps web service APIs.
type APISearcher struct {
	client gmaps.Client
	delay  time.Duration
}

// NewAPISearcher creates the structured acquisition path. delay is the
// fixed pause inserted between successive detail fetches.
func NewAPISearcher(client gmaps.Client, delay time.Duration) *APISearcher {
	return &APISearcher{client: client, delay: delay}
}

// Search geocodes the location, lists nearby establishments and fetches
// extended details per result. A failed detail fetch drops that result
// only; a location that does not geocode aborts with ErrLocationNotFound.
func (s *APISearcher) Search(ctx context.Context, q Query) ([]model.Business, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("searcher", "api"), zap.String("term", q.Term))

	center, err := s.client.Geocode(ctx, q.Location)
	if err != nil {
		return nil, eris.Wrap(err, "acquire: geocode")
	}
	if center == nil {
		return nil, eris.Wrapf(ErrLocationNotFound, "location %q", q.Location)
	}

	stubs, err := s.client.NearbySearch(ctx, *center, q.RadiusMeters, q.Term)
	if err != nil {
		return nil, eris.Wrap(err, "acquire: nearby search")
	}
	if len(stubs) > q.MaxResults {
		stubs = stubs[:q.MaxResults]
	}

	businesses := make([]model.Business, 0, len(stubs))
	for i, stub := range stubs {
		if i > 0 {
			pace(ctx, s.delay)
		}
		if ctx.Err() != nil {
			return businesses, eris.Wrap(ctx.Err(), "acquire: search cancelled")
		}

		detail, err := s.client.PlaceDetails(ctx, stub.PlaceID, detailFields)
		if err != nil {
			log.Warn("acquire: detail fetch failed, skipping result",
				zap.String("place_id", stub.PlaceID),
				zap.Error(err),
			)
			continue
		}

		b := s.businessFromDetail(stub, detail)
		if b.Name == "" {
			log.Warn("acquire: result has no name, skipping",
				zap.String("place_id", stub.PlaceID),
			)
			continue
		}
		businesses = append(businesses, b)
	}

	log.Info("acquire: search complete",
		zap.Int("candidates", len(stubs)),
		zap.Int("collected", len(businesses)),
	)
	return businesses, nil
}

func (s *APISearcher) businessFromDetail(stub gmaps.PlaceStub, d *gmaps.PlaceDetail) model.Business {
	name := d.Name
	if name == "" {
		name = stub.Name
	}

	b := model.Business{
		Name:         name,
		Address:      d.Address,
		Phone:        d.Phone,
		Website:      d.Website,
		Category:     strings.Join(d.Types, ", "),
		Rating:       d.Rating,
		RatingCount:  d.UserRatingCount,
		OpeningHours: strings.Join(d.OpeningHours.WeekdayText, "; "),
		PlaceID:      stub.PlaceID,
	}

	if d.Geometry.Location != (gmaps.LatLng{}) {
		b.Location = &model.Coordinate{
			Lat: d.Geometry.Location.Lat,
			Lng: d.Geometry.Location.Lng,
		}
	}

	for i, p := range d.Photos {
		if i >= maxPhotos {
			break
		}
		if p.PhotoReference == "" {
			continue
		}
		b.PhotoURLs = append(b.PhotoURLs, s.client.PhotoURL(p.PhotoReference, 400))
	}

	return b
}
