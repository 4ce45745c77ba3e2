package telemetry

import (
	"fmt"

	"github.com/Tinkerforge/go-api-bindings/ipconnection"
	"github.com/Tinkerforge/go-api-bindings/lcd_128x64_bricklet"
	"github.com/Tinkerforge/go-api-bindings/temperature_ir_v2_bricklet"
	"github.com/Tinkerforge/go-api-bindings/voltage_current_v2_bricklet"
	"github.com/pkg/errors"
)

// TinkerforgeConfig names the bricklets attached to the brick daemon.
type TinkerforgeConfig struct {
	Host     string
	Port     int
	TempUID  string
	PowerUID string
	LCDUID   string
	// Emissivity of the measured surface, 0..1.
	Emissivity float64
}

// Tinkerforge holds the connection to the brick daemon and the bricklets read
// by the logger.
type Tinkerforge struct {
	ipcon ipconnection.IPConnection
	tmp   temperature_ir_v2_bricklet.TemperatureIRV2Bricklet
	vc    voltage_current_v2_bricklet.VoltageCurrentV2Bricklet
	lcd   *lcd_128x64_bricklet.LCD128x64Bricklet
}

// ConnectTinkerforge creates the bricklets and connects to the brick daemon.
// The LCD is optional, an empty LCDUID skips it.
func ConnectTinkerforge(cfg TinkerforgeConfig) (*Tinkerforge, error) {
	t := &Tinkerforge{
		ipcon: ipconnection.New(),
	}

	var err error
	t.tmp, err = temperature_ir_v2_bricklet.New(cfg.TempUID, &t.ipcon)
	if err != nil {
		t.ipcon.Close()
		return nil, errors.Wrap(err, "could not create TemperatureIRV2Bricklet")
	}

	t.vc, err = voltage_current_v2_bricklet.New(cfg.PowerUID, &t.ipcon)
	if err != nil {
		t.ipcon.Close()
		return nil, errors.Wrap(err, "could not create VoltageCurrentV2Bricklet")
	}

	if cfg.LCDUID != "" {
		lcd, err := lcd_128x64_bricklet.New(cfg.LCDUID, &t.ipcon)
		if err != nil {
			t.ipcon.Close()
			return nil, errors.Wrap(err, "could not create LCD128x64Bricklet")
		}
		t.lcd = &lcd
	}

	t.ipcon.Connect(fmt.Sprint(cfg.Host, ":", cfg.Port))

	err = t.vc.SetConfiguration(voltage_current_v2_bricklet.Averaging64, voltage_current_v2_bricklet.ConversionTime8_244ms, voltage_current_v2_bricklet.ConversionTime8_244ms)
	if err != nil {
		t.Close()
		return nil, errors.Wrap(err, "could not configure VoltageCurrentV2Bricklet")
	}

	t.tmp.SetEmissivity(uint16(cfg.Emissivity * 65535))

	return t, nil
}

// Source exposes the ambient temperature as the record's temperature, plus the
// object temperature and bus power.
func (t *Tinkerforge) Source() Source {
	return &Getters{
		Device: "tinkerforge",
		Fields: map[Field]Getter{
			Temperature: func() (float64, error) {
				v, err := t.tmp.GetAmbientTemperature()
				return float64(v) / 10, err
			},
			ObjectTemp: func() (float64, error) {
				v, err := t.tmp.GetObjectTemperature()
				return float64(v) / 10, err
			},
			Power: func() (float64, error) {
				v, err := t.vc.GetPower()
				return float64(v) / 1000, err
			},
		},
	}
}

// Display returns the status display on the LCD bricklet, nil without one.
func (t *Tinkerforge) Display() *Display {
	if t.lcd == nil {
		return nil
	}
	return &Display{
		WriteLine: func(line int, text string) error {
			return t.lcd.WriteLine(uint8(line), 0, text)
		},
	}
}

func (t *Tinkerforge) Close() {
	t.ipcon.Disconnect()
	t.ipcon.Close()
}
