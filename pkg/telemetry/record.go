// Package telemetry samples the onboard sensors at a fixed interval and keeps
// a CSV record of the readings plus a plain text mission log.
package telemetry

import (
	"math"
	"strconv"
	"time"
)

// Field names one sensor quantity.
type Field string

const (
	Altitude    Field = "altitude"
	Latitude    Field = "latitude"
	Longitude   Field = "longitude"
	Yaw         Field = "yaw"
	Pitch       Field = "pitch"
	Roll        Field = "roll"
	AccelX      Field = "accel_x"
	AccelY      Field = "accel_y"
	AccelZ      Field = "accel_z"
	MagX        Field = "mag_x"
	MagY        Field = "mag_y"
	MagZ        Field = "mag_z"
	GyroX       Field = "gyro_x"
	GyroY       Field = "gyro_y"
	GyroZ       Field = "gyro_z"
	Temperature Field = "temperature"
	Pressure    Field = "pressure"
	Humidity    Field = "humidity"
	ObjectTemp  Field = "object_temperature"
	Power       Field = "power"
)

// Value is a reading that renders as an empty cell when it is missing.
type Value float64

// Missing is the placeholder stored for failed reads.
var Missing = Value(math.NaN())

func (v Value) Valid() bool {
	return !math.IsNaN(float64(v))
}

func (v Value) MarshalCSV() (string, error) {
	if !v.Valid() {
		return "", nil
	}
	return strconv.FormatFloat(float64(v), 'f', -1, 64), nil
}

func (v *Value) UnmarshalCSV(s string) error {
	if s == "" {
		*v = Missing
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// Record is one row of the telemetry CSV.
type Record struct {
	Date        string `csv:"Date[DD/MM/YYYY]"`
	Time        string `csv:"Time[UTC-24H h:m:s]"`
	Altitude    Value  `csv:"Altitude[m]"`
	Latitude    Value  `csv:"Latitude[Deg]"`
	Longitude   Value  `csv:"Longitude[Deg]"`
	Yaw         Value  `csv:"Yaw[Deg]"`
	Pitch       Value  `csv:"Pitch[Deg]"`
	Roll        Value  `csv:"Roll[Deg]"`
	AccelX      Value  `csv:"xAcceleration[g]"`
	AccelY      Value  `csv:"yAcceleration[g]"`
	AccelZ      Value  `csv:"zAcceleration[g]"`
	MagX        Value  `csv:"xMag[µT]"`
	MagY        Value  `csv:"yMag[µT]"`
	MagZ        Value  `csv:"zMag[µT]"`
	GyroX       Value  `csv:"xω[rad/s]"`
	GyroY       Value  `csv:"yω[rad/s]"`
	GyroZ       Value  `csv:"zω[rad/s]"`
	Temperature Value  `csv:"Temperature[°C]"`
	Pressure    Value  `csv:"Pressure[hPa]"`
	Humidity    Value  `csv:"Humidity[%]"`
}

func (r *Record) fields() map[Field]*Value {
	return map[Field]*Value{
		Altitude:    &r.Altitude,
		Latitude:    &r.Latitude,
		Longitude:   &r.Longitude,
		Yaw:         &r.Yaw,
		Pitch:       &r.Pitch,
		Roll:        &r.Roll,
		AccelX:      &r.AccelX,
		AccelY:      &r.AccelY,
		AccelZ:      &r.AccelZ,
		MagX:        &r.MagX,
		MagY:        &r.MagY,
		MagZ:        &r.MagZ,
		GyroX:       &r.GyroX,
		GyroY:       &r.GyroY,
		GyroZ:       &r.GyroZ,
		Temperature: &r.Temperature,
		Pressure:    &r.Pressure,
		Humidity:    &r.Humidity,
	}
}

// NewRecord returns a record stamped with t whose readings are all missing.
func NewRecord(t time.Time) Record {
	r := Record{
		Date: FormatDate(t),
		Time: FormatTime(t),
	}
	for _, v := range r.fields() {
		*v = Missing
	}
	return r
}

// Get returns the value of a field, Missing for fields not in the CSV.
func (r *Record) Get(f Field) Value {
	if v, ok := r.fields()[f]; ok {
		return *v
	}
	return Missing
}

// FormatDate renders t as D/M/YYYY without padding.
func FormatDate(t time.Time) string {
	return strconv.Itoa(t.Day()) + "/" + strconv.Itoa(int(t.Month())) + "/" + strconv.Itoa(t.Year())
}

// FormatTime renders t as h:m:s.fff without padding, keeping at least one
// decimal on the seconds.
func FormatTime(t time.Time) string {
	sec := float64(t.Second()) + math.Round(float64(t.Nanosecond())/1e6)/1000
	s := strconv.FormatFloat(sec, 'f', -1, 64)
	if math.Trunc(sec) == sec {
		s += ".0"
	}
	return strconv.Itoa(t.Hour()) + ":" + strconv.Itoa(t.Minute()) + ":" + s
}
