// Package polyline encodes and decodes coordinate sequences in the Encoded Polyline
// Algorithm Format (precision 1e5) and in the plain "lat,lng|lat,lng" form emitted by
// straight-line fallback routes.
package polyline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"trip-route-planner/internal/models"
)

// ErrMalformedPolyline is returned when a polyline string cannot be decoded
var ErrMalformedPolyline = errors.New("malformed polyline")

const (
	precision    = 1e5
	asciiOffset  = 63
	chunkBits    = 5
	chunkMask    = 0x1f
	continuation = 0x20
	maxShift     = 60
)

// Encode converts points into an encoded polyline string
func Encode(points []models.Coordinates) string {
	if len(points) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(points) * 8)

	var prevLat, prevLng int64
	for _, p := range points {
		lat := int64(math.Round(p.Lat * precision))
		lng := int64(math.Round(p.Lng * precision))

		encodeValue(&sb, lat-prevLat)
		encodeValue(&sb, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return sb.String()
}

func encodeValue(sb *strings.Builder, v int64) {
	u := uint64(v << 1)
	if v < 0 {
		u = ^u
	}

	for u >= continuation {
		sb.WriteByte(byte((continuation | (u & chunkMask)) + asciiOffset))
		u >>= chunkBits
	}
	sb.WriteByte(byte(u + asciiOffset))
}

// Decode is the inverse of Encode. Truncated input or characters outside the
// encoding alphabet yield an error wrapping ErrMalformedPolyline.
func Decode(encoded string) ([]models.Coordinates, error) {
	if encoded == "" {
		return []models.Coordinates{}, nil
	}

	points := make([]models.Coordinates, 0, len(encoded)/4)
	var lat, lng int64
	index := 0

	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, fmt.Errorf("%w: missing longitude at offset %d", ErrMalformedPolyline, next)
		}

		dLng, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lng += dLng
		points = append(points, models.Coordinates{
			Lat: float64(lat) / precision,
			Lng: float64(lng) / precision,
		})
	}

	return points, nil
}

func decodeValue(encoded string, index int) (int64, int, error) {
	var result uint64
	shift := uint(0)

	for {
		if index >= len(encoded) {
			return 0, index, fmt.Errorf("%w: truncated value at offset %d", ErrMalformedPolyline, index)
		}

		c := encoded[index]
		if c < asciiOffset || c > asciiOffset+chunkMask+continuation {
			return 0, index, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformedPolyline, c, index)
		}
		if shift > maxShift {
			return 0, index, fmt.Errorf("%w: value overflow at offset %d", ErrMalformedPolyline, index)
		}

		b := uint64(c - asciiOffset)
		index++
		result |= (b & chunkMask) << shift
		shift += chunkBits

		if b < continuation {
			break
		}
	}

	if result&1 != 0 {
		return ^int64(result >> 1), index, nil
	}
	return int64(result >> 1), index, nil
}

// EncodeDelimited renders points as "lat,lng" pairs joined by "|"
func EncodeDelimited(points []models.Coordinates) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
	}
	return strings.Join(parts, "|")
}

// DecodeDelimited parses the "lat,lng|lat,lng" form
func DecodeDelimited(s string) ([]models.Coordinates, error) {
	if strings.TrimSpace(s) == "" {
		return []models.Coordinates{}, nil
	}

	pairs := strings.Split(s, "|")
	points := make([]models.Coordinates, 0, len(pairs))
	for i, pair := range pairs {
		latStr, lngStr, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("%w: pair %d has no comma", ErrMalformedPolyline, i)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %d latitude: %v", ErrMalformedPolyline, i, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: pair %d longitude: %v", ErrMalformedPolyline, i, err)
		}

		points = append(points, models.Coordinates{Lat: lat, Lng: lng})
	}

	return points, nil
}

// IsDelimited reports whether s is in the "lat,lng|lat,lng" form. A comma never
// occurs in encoded data, while "|" does, so the comma decides.
func IsDelimited(s string) bool {
	return strings.ContainsRune(s, ',')
}

// Parse decodes either accepted wire form
func Parse(s string) ([]models.Coordinates, error) {
	if IsDelimited(s) {
		return DecodeDelimited(s)
	}
	return Decode(s)
}
