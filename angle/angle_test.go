package angle_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/tzneal/geodesy"
	"github.com/tzneal/geodesy/angle"
	"github.com/tzneal/geodesy/unit"
)

func TestDirectConstructionIsExact(t *testing.T) {
	for _, d := range []float64{0, 1e-300, 12.345678901234567, -179.99999999999997, 359.9999999999, 1e12} {
		if got := angle.New(d).Degrees(); got != d {
			t.Errorf("New(%v).Degrees() = %v", d, got)
		}
	}
}

func TestFromDMSRoundTrip(t *testing.T) {
	tests := []struct {
		d, m, s float64
		packed  float64
	}{
		{45, 30, 15.5, 453015.5},
		{-120, 5, 0.25, -1200500.25},
		{0, -30, 0, -3000},
		{0, 0, -12.5, -12.5},
		{89, 59, 59.9999, 895959.9999},
		{10, 6, 0, 100600},
		{45, 59, 59.9999999, 460000},
	}
	for _, tt := range tests {
		a, err := angle.FromDMS(tt.d, tt.m, tt.s)
		if err != nil {
			t.Fatalf("FromDMS(%v, %v, %v): %s", tt.d, tt.m, tt.s, err)
		}
		if got := a.ToDMS(); math.Abs(got-tt.packed) > 1e-4 {
			t.Errorf("FromDMS(%v, %v, %v).ToDMS() = %.6f, want %.6f", tt.d, tt.m, tt.s, got, tt.packed)
		}
	}
}

func TestDMSCarry(t *testing.T) {
	a, err := angle.FromDMS(45, 59, 59.9999999)
	if err != nil {
		t.Fatal(err)
	}
	neg, d, m, s := a.DMS()
	if neg || d != 46 || m != 0 || s != 0 {
		t.Errorf("DMS() = %v %d %d %v, want 46 0 0", neg, d, m, s)
	}
	if got := a.String(); got != "46°00'00.0000\"" {
		t.Errorf("String() = %q", got)
	}
}

func TestFromDMSRejects(t *testing.T) {
	tests := []struct {
		name    string
		d, m, s float64
	}{
		{"two negatives", -10, -5, 0},
		{"minute 60", 10, 60, 0},
		{"negative minute with degrees", 10, -5, 0},
		{"second 60", 10, 5, 60},
		{"zero degree minute over 60", 0, 61, 0},
		{"zero degree second 60", 0, 30, 60},
		{"seconds only 60", 0, 0, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := angle.FromDMS(tt.d, tt.m, tt.s)
			if !errors.Is(err, geodesy.ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
	// The zero-degree branch accepts a full 60 minutes.
	a, err := angle.FromDMS(0, 60, 0)
	if err != nil || a.Degrees() != 1 {
		t.Errorf("FromDMS(0, 60, 0) = %v, %v", a.Degrees(), err)
	}
}

func TestSetValuePacked(t *testing.T) {
	a, err := angle.FromStyle(453015.5, angle.PackedDMS)
	if err != nil {
		t.Fatal(err)
	}
	want := 45 + 30.0/60 + 15.5/3600
	if math.Abs(a.Degrees()-want) > 1e-12 {
		t.Errorf("got %v, want %v", a.Degrees(), want)
	}
	dm, err := angle.FromStyle(-4530.5, angle.PackedDM)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dm.Degrees()+(45+30.5/60)) > 1e-12 {
		t.Errorf("got %v", dm.Degrees())
	}
	for _, bad := range []struct {
		v     float64
		style angle.Style
	}{
		{456015, angle.PackedDMS},
		{453060, angle.PackedDMS},
		{4560.5, angle.PackedDM},
	} {
		if _, err := angle.FromStyle(bad.v, bad.style); !errors.Is(err, geodesy.ErrInvalidInput) {
			t.Errorf("FromStyle(%v, %v): expected invalid input, got %v", bad.v, bad.style, err)
		}
	}
}

func TestValueStyles(t *testing.T) {
	a := angle.New(1.5)
	tests := []struct {
		style angle.Style
		want  float64
	}{
		{angle.Degrees, 1.5},
		{angle.Minutes, 90},
		{angle.Seconds, 5400},
		{angle.Radians, 1.5 * math.Pi / 180},
		{angle.PackedDM, 130},
		{angle.PackedDMS, 13000},
	}
	for _, tt := range tests {
		if got := a.Value(tt.style); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Value(%v) = %v, want %v", tt.style, got, tt.want)
		}
		back, err := angle.FromStyle(tt.want, tt.style)
		if err != nil {
			t.Fatal(err)
		}
		if !back.Equal(a) {
			t.Errorf("FromStyle(%v, %v) = %v", tt.want, tt.style, back.Degrees())
		}
	}
}

func TestLatitudeNormalize(t *testing.T) {
	tests := []struct {
		in      float64
		want    float64
		invalid bool
	}{
		{45, 45, false},
		{90, 90, false},
		{-90, -90, false},
		{270, -90, false},
		{315, -45, false},
		{405, 45, false},
		{90.0001, 0, true},
		{180, 0, true},
		{269.9999, 0, true},
		{-100, 0, true},
	}
	for _, tt := range tests {
		got, err := angle.NewLatitude(tt.in)
		if tt.invalid {
			if !errors.Is(err, geodesy.ErrInvalidInput) {
				t.Errorf("NewLatitude(%v): expected invalid input, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("NewLatitude(%v): %s", tt.in, err)
		}
		if math.Abs(got.Degrees()-tt.want) > 1e-12 {
			t.Errorf("NewLatitude(%v) = %v, want %v", tt.in, got.Degrees(), tt.want)
		}
	}
}

func TestLongitudeNormalizeNeverFails(t *testing.T) {
	for d := -1000.0; d <= 1000; d += 7.25 {
		got, err := angle.NewLongitude(d)
		if err != nil {
			t.Fatalf("NewLongitude(%v): %s", d, err)
		}
		if got.Degrees() <= -180 || got.Degrees() > 180 {
			t.Errorf("NewLongitude(%v) = %v outside (-180, 180]", d, got.Degrees())
		}
	}
	got, _ := angle.NewLongitude(180)
	if got.Degrees() != 180 {
		t.Errorf("NewLongitude(180) = %v", got.Degrees())
	}
	got, _ = angle.NewLongitude(-180)
	if got.Degrees() != 180 {
		t.Errorf("NewLongitude(-180) = %v", got.Degrees())
	}
}

func TestPlainNormalize(t *testing.T) {
	got, err := angle.New(-30).Normalize()
	if err != nil || got.Degrees() != 330 {
		t.Errorf("Normalize(-30) = %v, %v", got.Degrees(), err)
	}
	if _, err := angle.Unset().Normalize(); err == nil {
		t.Error("expected error normalising an unset angle")
	}
}

func TestEqualEpsilon(t *testing.T) {
	a := angle.New(10)
	if !a.Equal(angle.New(10 + 0.9e-10)) {
		t.Error("expected equality inside epsilon")
	}
	if a.Equal(angle.New(10 + 1.1e-10)) {
		t.Error("expected inequality outside epsilon")
	}
}

func TestDifference(t *testing.T) {
	if got := angle.Difference(angle.Lat(30), angle.Lat(10)); got.Degrees() != 20 {
		t.Errorf("got %v", got.Degrees())
	}
	if got := angle.Difference(angle.Lng(-10), angle.Lng(20)); got.Degrees() != 330 {
		t.Errorf("got %v", got.Degrees())
	}
	if got := angle.Difference(angle.Lng(-10), angle.Lng(20)); got.Kind() != angle.KindPlain {
		t.Errorf("difference kind %v", got.Kind())
	}
}

func TestUnitsAndS1(t *testing.T) {
	a := angle.FromUnit(200, unit.Gon)
	if math.Abs(a.Degrees()-180) > 1e-12 {
		t.Errorf("200 gon = %v deg", a.Degrees())
	}
	if math.Abs(float64(a.S1())-math.Pi) > 1e-15 {
		t.Errorf("S1() = %v", a.S1())
	}
	b := angle.FromS1(s1.Angle(math.Pi / 2))
	if math.Abs(b.Degrees()-90) > 1e-12 {
		t.Errorf("FromS1 = %v", b.Degrees())
	}
	if math.Abs(b.In(unit.ArcMinute)-5400) > 1e-9 {
		t.Errorf("In(min) = %v", b.In(unit.ArcMinute))
	}
}

func TestJSON(t *testing.T) {
	lat := angle.Lat(39.9042)
	b, err := json.Marshal(lat)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"value":39.9042,"style":"deg","kind":"latitude"}` {
		t.Errorf("Marshal = %s", b)
	}
	var got angle.Angle
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Degrees() != lat.Degrees() || got.Kind() != angle.KindLatitude {
		t.Errorf("Unmarshal = %v %v", got.Degrees(), got.Kind())
	}
	if err := json.Unmarshal([]byte(`{"value":1163022.5,"style":"dms","kind":"longitude"}`), &got); err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Degrees()-(116+30.0/60+22.5/3600)) > 1e-12 {
		t.Errorf("dms Unmarshal = %v", got.Degrees())
	}
	if err := json.Unmarshal([]byte(`{"value":1166022.5,"style":"dms"}`), &got); !errors.Is(err, geodesy.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if err := json.Unmarshal([]byte(`null`), &got); err != nil || got.IsSet() {
		t.Errorf("null Unmarshal = %v, %v", got, err)
	}
}
