package services

import (
	"context"
	"electrocare-backend/models"
	"electrocare-backend/repository"
	"electrocare-backend/utils/logger"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

const earthRadiusKm = 6371.0

// GeoService resolves a requester's location into an ordered candidate set.
// Coordinates drive a haversine radius search; a pincode is the exact-match
// fallback; with neither, the candidate set is empty. Lookup trouble never
// propagates: dispatch must still create a (possibly unmatched) request.
type GeoService struct {
	technicianRepo repository.TechnicianRepositoryInterface
	config         *models.Config
	logger         logger.Logger
	httpClient     *http.Client
}

func NewGeoService(technicianRepo repository.TechnicianRepositoryInterface, cfg *models.Config, log logger.Logger) *GeoService {
	return &GeoService{
		technicianRepo: technicianRepo,
		config:         cfg,
		logger:         log,
		httpClient: &http.Client{
			Timeout: cfg.GeocoderTimeout,
		},
	}
}

// FindCandidates returns broadcast-eligible technicians for the given
// location, nearest first. radiusKm <= 0 falls back to the configured
// broadcast radius.
func (s *GeoService) FindCandidates(ctx context.Context, lat, lng float64, pincode string, radiusKm float64) []*models.Technician {
	if radiusKm <= 0 {
		radiusKm = s.config.BroadcastRadiusKm
	}

	if lat != 0 && lng != 0 {
		candidates, err := s.findByRadius(ctx, lat, lng, radiusKm)
		if err != nil {
			s.logger.Errorf("Geo search failed, returning empty candidate set: %v", err)
			return nil
		}
		return candidates
	}

	if pincode != "" {
		candidates, err := s.technicianRepo.ListByPincode(ctx, pincode)
		if err != nil {
			s.logger.Errorf("Pincode search failed, returning empty candidate set: %v", err)
			return nil
		}
		s.logger.Infof("Pincode %s matched %d technicians", pincode, len(candidates))
		return candidates
	}

	return nil
}

func (s *GeoService) findByRadius(ctx context.Context, lat, lng, radiusKm float64) ([]*models.Technician, error) {
	s.logger.Infof("Geo search at (%.4f, %.4f) within %.0f km", lat, lng, radiusKm)

	eligible, err := s.technicianRepo.ListBroadcastable(ctx)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		tech *models.Technician
		dist float64
	}

	var inRange []ranked
	for _, t := range eligible {
		if t.Location.IsZero() {
			continue
		}
		d := Haversine(lat, lng, t.Location.Latitude, t.Location.Longitude)
		if d <= radiusKm {
			inRange = append(inRange, ranked{tech: t, dist: d})
		}
	}

	sort.Slice(inRange, func(i, j int) bool {
		return inRange[i].dist < inRange[j].dist
	})

	candidates := make([]*models.Technician, len(inRange))
	for i, r := range inRange {
		candidates[i] = r.tech
	}

	s.logger.Infof("Geo search found %d technicians in range", len(candidates))
	return candidates, nil
}

// Haversine computes the great-circle distance between two points in km.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// GeocodeAddress resolves a free-form address to coordinates. It tries the
// full address first, then a degraded city+pincode query; on total failure
// it reports no coordinates and the caller falls back to pincode matching.
func (s *GeoService) GeocodeAddress(ctx context.Context, addr *models.Address) (float64, float64, bool) {
	if addr == nil {
		return 0, 0, false
	}

	queries := []string{}
	full := joinAddressParts(addr.Street, addr.City, addr.Pincode)
	if full != "" {
		queries = append(queries, full)
	}
	degraded := joinAddressParts(addr.City, addr.Pincode)
	if degraded != "" && degraded != full {
		queries = append(queries, degraded)
	}

	for _, q := range queries {
		lat, lng, err := s.lookup(ctx, q)
		if err != nil {
			s.logger.Warnf("Geocoding %q failed: %v", q, err)
			continue
		}
		if lat != 0 || lng != 0 {
			s.logger.Infof("Geocoded %q to (%.4f, %.4f)", q, lat, lng)
			return lat, lng, true
		}
	}

	return 0, 0, false
}

func (s *GeoService) lookup(ctx context.Context, query string) (float64, float64, error) {
	endpoint := fmt.Sprintf("%s?q=%s&format=json&limit=1", s.config.GeocoderBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", s.config.AppName)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, err
	}

	first := gjson.GetBytes(body, "0")
	if !first.Exists() {
		return 0, 0, nil
	}

	return first.Get("lat").Float(), first.Get("lon").Float(), nil
}

func joinAddressParts(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, strings.TrimSpace(p))
		}
	}
	return strings.Join(kept, ", ")
}
