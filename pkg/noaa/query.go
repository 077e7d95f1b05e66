package noaa

import (
	"fmt"
	"net/url"
	"time"
)

const (
	NOAA_URL = "https://api.tidesandcurrents.noaa.gov/api/prod/datagetter"
	TIME_FMT = "20060102"
)

// Product is the CO-OPS name of a data product.
type Product string

const (
	WaterLevel       Product = "water_level"
	TidePredictions  Product = "predictions"
	AirTemperature   Product = "air_temperature"
	WaterTemperature Product = "water_temperature"
	Wind             Product = "wind"
	AirPressure      Product = "air_pressure"
)

// Interval selects the sampling of a pull.
type Interval string

const (
	SixMinute Interval = "6"
	OneMinute Interval = "1"
	HiLo      Interval = "hilo"
)

// Query is used to pull one product at a station over a time window; see
// Client.Pull. The API only honors whole days, so the window is widened to
// days on the wire and trimmed back afterwards.
type Query struct {
	Product  Product
	Interval Interval
	Begin    time.Time
	End      time.Time
	Station  Station
}

func (q *Query) String() string {
	return fmt.Sprintf("%s/%s [%s, %s]", q.Product, q.Interval,
		q.Begin.Format(time.RFC3339), q.End.Format(time.RFC3339))
}

// URL resolves the query against an API endpoint.
func (q *Query) URL(base string) (*url.URL, error) {
	addr, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("bad api url %q: %w", base, err)
	}
	addr.RawQuery = q.build().Encode()
	return addr, nil
}

func (q *Query) build() url.Values {
	vals := make(url.Values)
	vals.Add("begin_date", q.Begin.Format(TIME_FMT))
	vals.Add("end_date", q.End.Format(TIME_FMT))
	vals.Add("station", fmt.Sprintf("%d", q.Station))
	vals.Add("product", string(q.Product))
	vals.Add("datum", "MLLW")
	vals.Add("time_zone", "lst_ldt")
	if q.Interval != "" {
		vals.Add("interval", string(q.Interval))
	}
	vals.Add("units", "english")
	vals.Add("format", "json")
	return vals
}
