package item

// Descriptor is what the UI draws for an item. The query engine never looks
// inside it.
type Descriptor struct {
	Title    string
	Subtitle string
	Tag      string // launcher name shown at the right edge
	Icon     string
	Kind     string // "app", "calc", "music", "weather"
	Selected bool
}

// Render builds the display descriptor of the item for the committed query.
func (it Item) Render(query string, selected bool) Descriptor {
	d := Descriptor{Tag: it.Def.Title(), Selected: selected}
	switch p := it.Payload.(type) {
	case *AppData:
		d.Kind = "app"
		d.Title = p.Name
		d.Subtitle = p.Description
		d.Icon = p.Icon
	case *CalcData:
		d.Kind = "calc"
		if r, ok := p.Answer(query); ok {
			d.Title = r.Display
		}
	case *MusicData:
		d.Kind = "music"
		if !p.Available {
			d.Title = "Nothing playing"
			break
		}
		d.Title = p.Track.Title
		d.Subtitle = p.Track.Artists
		if p.Track.Playing {
			d.Icon = "▶"
		} else {
			d.Icon = "⏸"
		}
	case *WeatherData:
		d.Kind = "weather"
		if !p.Init {
			d.Title = it.Def.Location
			d.Subtitle = "loading weather"
			break
		}
		d.Title = p.Report.Temperature + "  " + p.Report.Location
		d.Subtitle = p.Report.Wind
		d.Icon = p.Report.Condition
	default:
		panic(unknown(p))
	}
	return d
}
