package dataset

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

// Footprint is the square of side distance metres centred on lat, lon.
func Footprint(lat, lon, distance float64) orb.Polygon {
	return geo.NewBoundAroundPoint(orb.Point{lon, lat}, distance/2).ToPolygon()
}

// Feature wraps the footprint of a summarised frame with its row as
// properties.
func Feature(name string, lat, lon float64, alt float64, row Row) *geojson.Feature {
	f := geojson.NewFeature(Footprint(lat, lon, EstimateDistance(alt)))
	f.Properties["name"] = name
	f.Properties["date"] = row.Date
	f.Properties["altitude"] = alt
	f.Properties["water_area"] = row.WaterArea
	f.Properties["lakes_area"] = row.LakesArea
	f.Properties["sea_area"] = row.SeaArea
	f.Properties["vegetation_area"] = row.VegetationArea
	f.Properties["vegetation_percentage"] = row.VegetationPercentage
	f.Properties["mean_ndvi"] = row.MeanNDVI
	f.Properties["mean_ndwi"] = row.MeanNDWI
	return f
}
