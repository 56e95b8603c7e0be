package las

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Geometry returns the point's horizontal position as an orb.Point. The
// elevation does not survive the conversion; keep the Point around when Z
// matters.
func (p Point) Geometry() orb.Point {
	return orb.Point{p.X, p.Y}
}

// Bound returns the horizontal extent of the bounds as an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min.X, b.Min.Y},
		Max: orb.Point{b.Max.X, b.Max.Y},
	}
}

// Feature converts the point to a GeoJSON feature. The elevation and the
// commonly inspected attributes ride along as properties.
func (p Point) Feature() *geojson.Feature {
	f := geojson.NewFeature(p.Geometry())
	f.Properties["elevation"] = p.Z
	f.Properties["intensity"] = p.Intensity
	f.Properties["classification"] = p.Classification
	f.Properties["return_number"] = p.ReturnNumber
	f.Properties["number_of_returns"] = p.NumberOfReturns
	f.Properties["point_source_id"] = p.PointSourceID
	if p.GPSTime != 0 {
		f.Properties["gps_time"] = p.GPSTime
	}
	return f
}

// ReadAllGeometries drains the remaining points as a MultiPoint geometry.
func (r *Reader) ReadAllGeometries() (orb.MultiPoint, error) {
	points := make(orb.MultiPoint, 0, r.remaining)
	for {
		p, err := r.ReadPoint()
		if err != nil {
			return points, err
		}
		if p == nil {
			return points, nil
		}
		points = append(points, p.Geometry())
	}
}

// ReadAllFeatures drains the remaining points into a GeoJSON feature
// collection. Intended for small files and debugging; the per-point property
// maps are not cheap.
func (r *Reader) ReadAllFeatures() (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for {
		p, err := r.ReadPoint()
		if err != nil {
			return fc, err
		}
		if p == nil {
			return fc, nil
		}
		fc.Append(p.Feature())
	}
}
