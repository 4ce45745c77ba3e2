package dataset

import (
	"encoding/csv"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Row is one line of the dataset CSV.
type Row struct {
	Date                 string  `csv:"Date[YYYY-MM-DD]" json:"date"`
	MetresPerPixel       float64 `csv:"mppx[m]" json:"mppx"`
	PixelArea            float64 `csv:"Pixel_area[m2]" json:"pixel_area"`
	WaterArea            float64 `csv:"WaterArea[m2]" json:"water_area"`
	LakesArea            float64 `csv:"LakesArea[m2]" json:"lakes_area"`
	SeaArea              float64 `csv:"SeaArea[m2]" json:"sea_area"`
	VegetationArea       float64 `csv:"VegetationArea[m2]" json:"vegetation_area"`
	MeanNDWI             float64 `csv:"MeanNDWI" json:"mean_ndwi"`
	MeanLakesNDWI        float64 `csv:"MeanLakesNDWI" json:"mean_lakes_ndwi"`
	MeanSeaNDWI          float64 `csv:"MeanSeaNDWI" json:"mean_sea_ndwi"`
	MeanNDVI             float64 `csv:"MeanNDVI" json:"mean_ndvi"`
	VegetationPercentage float64 `csv:"VegetationPercentage" json:"vegetation_percentage"`
}

// Append adds rows to the CSV at path, writing the header first when the file
// is new or empty.
func Append(path string, rows []Row) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "could not open %s", path)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "could not stat %s", path)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		err = gocsv.MarshalCSV(&rows, w)
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(&rows, w)
	}
	if err != nil {
		return errors.Wrap(err, "could not write rows")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, "could not flush rows")
	}
	return f.Sync()
}

// Load reads a dataset CSV.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	var rows []Row
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	return rows, nil
}
