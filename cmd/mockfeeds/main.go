// Command mockfeeds serves deterministic stand-ins for the four upstream data
// providers so the risk engine can be run and demoed without NASA credentials
// or network access. Values are synthesized from the request coordinate and
// date, so identical requests always produce identical feeds.
//
// Usage:
//
//	go run ./cmd/mockfeeds -addr :9090
//
//	POWER_BASE_URL=http://localhost:9090/power \
//	GPM_BASE_URL=http://localhost:9090/gpm \
//	MODIS_BASE_URL=http://localhost:9090/modis \
//	WORLDVIEW_BASE_URL=http://localhost:9090/worldview \
//	go run ./cmd/riskd
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"
)

const dayLayout = "20060102"

func main() {
	addr := flag.String("addr", ":9090", "listen address")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /power", handlePower)
	mux.HandleFunc("GET /gpm", handleGPM)
	mux.HandleFunc("GET /modis", handleMODIS)
	mux.HandleFunc("GET /worldview", handleWorldview)

	log.Printf("mock feeds listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

// feedParams is the common query surface of the mocked providers.
type feedParams struct {
	lat, lon   float64
	start, end time.Time
}

func parseParams(r *http.Request, dateLayout, startKey, endKey string) (feedParams, error) {
	q := r.URL.Query()
	lat, err := strconv.ParseFloat(q.Get("latitude"), 64)
	if err != nil {
		return feedParams{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(q.Get("longitude"), 64)
	if err != nil {
		return feedParams{}, fmt.Errorf("longitude: %w", err)
	}
	start, err := time.ParseInLocation(dateLayout, q.Get(startKey), time.UTC)
	if err != nil {
		return feedParams{}, fmt.Errorf("%s: %w", startKey, err)
	}
	end, err := time.ParseInLocation(dateLayout, q.Get(endKey), time.UTC)
	if err != nil {
		return feedParams{}, fmt.Errorf("%s: %w", endKey, err)
	}
	return feedParams{lat: lat, lon: lon, start: start, end: end}, nil
}

func handlePower(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, dayLayout, "start", "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	temps := map[string]float64{}
	precips := map[string]float64{}
	for d := p.start; !d.After(p.end); d = d.AddDate(0, 0, 1) {
		key := d.Format(dayLayout)
		// Roughly one day in eleven has no reading, matching the sparse
		// coverage of the real feed.
		if noise(p.lat, p.lon, d, "gap")%11 == 0 {
			temps[key] = -999
		} else {
			temps[key] = round1(dailyTemperature(p.lat, d))
		}
		precips[key] = round1(dailyPrecipitation(p.lat, p.lon, d))
	}

	writeJSON(w, map[string]any{
		"properties": map[string]any{
			"parameter": map[string]any{
				"T2M":         temps,
				"PRECTOTCORR": precips,
			},
		},
	})
}

func handleGPM(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, dayLayout, "start", "end")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type entry struct {
		Date          string   `json:"date"`
		Precipitation *float64 `json:"precipitation"`
	}
	var data []entry
	for d := p.start; !d.After(p.end); d = d.AddDate(0, 0, 1) {
		// IMERG runs a touch wetter than the surface model.
		v := round1(dailyPrecipitation(p.lat, p.lon, d) * 1.1)
		data = append(data, entry{Date: d.Format("2006-01-02"), Precipitation: &v})
	}
	writeJSON(w, map[string]any{"data": data})
}

func handleMODIS(w http.ResponseWriter, r *http.Request) {
	p, err := parseParams(r, "2006-01-02", "startDate", "endDate")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type cell struct {
		CalendarDate string   `json:"calendar_date"`
		Value        *float64 `json:"value"`
	}
	// 16-day compositing period, like MOD13Q1.
	var subset []cell
	for d := p.start; !d.After(p.end); d = d.AddDate(0, 0, 16) {
		v := math.Floor(ndvi(p.lat, p.lon, d) / 0.0001)
		subset = append(subset, cell{CalendarDate: d.Format("2006-01-02"), Value: &v})
	}
	writeJSON(w, map[string]any{"subset": subset})
}

func handleWorldview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("TIME") == "" {
		http.Error(w, "missing TIME", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	// One-pixel placeholder; the client only checks reachability.
	w.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}) //nolint:errcheck
}

// dailyTemperature follows a seasonal sine keyed to latitude with small
// deterministic day-to-day jitter.
func dailyTemperature(lat float64, d time.Time) float64 {
	season := math.Sin(2 * math.Pi * float64(d.YearDay()) / 365)
	if lat < 0 {
		season = -season
	}
	base := 28 - math.Abs(lat)/3
	jitter := float64(noise(lat, 0, d, "t2m")%60)/10 - 3
	return base + 6*season + jitter
}

// dailyPrecipitation is mostly dry days with occasional heavier rain.
func dailyPrecipitation(lat, lon float64, d time.Time) float64 {
	n := noise(lat, lon, d, "precip") % 100
	switch {
	case n < 55:
		return 0
	case n < 85:
		return float64(n-55) / 3
	default:
		return float64(n - 75)
	}
}

// ndvi stays in the healthy 0.5-0.8 band with mild variation.
func ndvi(lat, lon float64, d time.Time) float64 {
	return 0.5 + float64(noise(lat, lon, d, "ndvi")%30)/100
}

func noise(lat, lon float64, d time.Time, salt string) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.2f|%.2f|%s", salt, lat, lon, d.Format(dayLayout))
	return h.Sum64()
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
