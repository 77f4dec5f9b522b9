package proto

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{"000000", Color{}, false},
		{"ffb000", Color{R: 255, G: 176, B: 0}, false},
		{"FFB000", Color{R: 255, G: 176, B: 0}, false},
		{"fff", Color{}, true},
		{"ffb00g", Color{}, true},
		{"", Color{}, true},
	}
	for _, test := range tests {
		t.Run(test.in, func(t *testing.T) {
			got, err := ParseColor(test.in)
			if (err != nil) != test.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, want error %v", test.in, err, test.wantErr)
			}
			if got != test.want {
				t.Errorf("ParseColor(%q) = %v, want %v", test.in, got, test.want)
			}
		})
	}
}

func TestConfigurationValidate(t *testing.T) {
	base := func() Configuration { return testConfiguration() }

	tests := []struct {
		name   string
		mutate func(*Configuration)
		field  string
	}{
		{"valid", func(*Configuration) {}, ""},
		{
			"no screens",
			func(c *Configuration) { c.Screens = nil },
			"screens",
		},
		{
			"two screens",
			func(c *Configuration) { c.Screens = append(c.Screens, Screen{}) },
			"screens",
		},
		{
			"bad font family",
			func(c *Configuration) {
				s := c.Styles["clock"]
				s.Font.Family = 9
				c.Styles["clock"] = s
			},
			"styles",
		},
		{
			"font too small",
			func(c *Configuration) {
				s := c.Styles["clock"]
				s.Font.Size = 3
				c.Styles["clock"] = s
			},
			"styles",
		},
		{
			"undefined text style",
			func(c *Configuration) { delete(c.Styles, "clock") },
			"elements[0]",
		},
		{
			"nameless sprite",
			func(c *Configuration) { c.Screens[0].Elements[1] = SpriteRef{} },
			"elements[1]",
		},
		{
			"single point polyline",
			func(c *Configuration) {
				c.Screens[0].Elements[4] = Polyline{Points: []Point{{X: 1, Y: 1}}}
			},
			"elements[4]",
		},
		{
			"empty rectangle",
			func(c *Configuration) {
				c.Screens[0].Elements[5] = Rect{TopLeft: Point{X: 1, Y: 1}}
			},
			"elements[5]",
		},
		{
			"point far off canvas",
			func(c *Configuration) {
				c.Screens[0].Elements[3] = Line{Start: Point{X: 30000, Y: 0}}
			},
			"elements[3]",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := base()
			test.mutate(&config)
			err := config.Validate()
			if test.field == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			var violation *SchemaViolation
			if !errors.As(err, &violation) {
				t.Fatalf("expected *SchemaViolation, got %v (%T)", err, err)
			}
			if violation.Field != test.field {
				t.Errorf("violation field = %q, want %q", violation.Field, test.field)
			}
		})
	}
}

func TestSpriteKeys(t *testing.T) {
	config := Configuration{
		Screens: []Screen{{
			Elements: []Element{
				SpriteRef{Name: "bus"},
				Line{},
				SpriteRef{Name: "tram"},
				SpriteRef{Name: "bus"},
			},
		}},
	}
	want := []string{"bus", "tram"}
	if got := config.SpriteKeys(); !reflect.DeepEqual(got, want) {
		t.Errorf("SpriteKeys() = %v, want %v", got, want)
	}
}
