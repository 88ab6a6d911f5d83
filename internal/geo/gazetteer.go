package geo

import "strings"

// Sentinel coordinates meaning "location unresolved". Callers must treat
// (0,0) as no reliable geocoding, never as a real equatorial position.
const (
	SentinelLat = 0.0
	SentinelLng = 0.0
)

// gazetteer maps lowercased place names to coordinates. Classifier output is
// usually "City, Country", so both the full form and the bare city name are
// listed for common entries.
var gazetteer = map[string]struct{ lat, lng float64 }{
	// Indian cities and districts seen in live monitoring data.
	"andheri east, mumbai":       {19.1197, 72.8697},
	"marina beach, chennai":      {13.0827, 80.2707},
	"karol bagh, new delhi":      {28.6519, 77.1909},
	"electronic city, bangalore": {12.8456, 77.6603},
	"pune city, maharashtra":     {18.5204, 73.8567},
	"howrah bridge, kolkata":     {22.5726, 88.3639},
	"hussain sagar, hyderabad":   {17.4239, 78.4738},
	"wayanad, kerala":            {11.6854, 76.1320},
	"ankleshwar, gujarat":        {21.6270, 73.0151},
	"jodhpur, rajasthan":         {26.2389, 73.0243},
	"mumbai":                     {19.0760, 72.8777},
	"chennai":                    {13.0827, 80.2707},
	"new delhi":                  {28.6139, 77.2090},
	"delhi":                      {28.7041, 77.1025},
	"bangalore":                  {12.9716, 77.5946},
	"pune":                       {18.5204, 73.8567},
	"kolkata":                    {22.5726, 88.3639},
	"hyderabad":                  {17.3850, 78.4867},
	"ahmedabad":                  {23.0225, 72.5714},
	"jaipur":                     {26.9124, 75.7873},

	// Major world cities.
	"tokyo":          {35.6762, 139.6503},
	"osaka":          {34.6937, 135.5023},
	"jakarta":        {-6.2088, 106.8456},
	"manila":         {14.5995, 120.9842},
	"dhaka":          {23.8103, 90.4125},
	"karachi":        {24.8607, 67.0011},
	"kathmandu":      {27.7172, 85.3240},
	"istanbul":       {41.0082, 28.9784},
	"tehran":         {35.6892, 51.3890},
	"cairo":          {30.0444, 31.2357},
	"lagos":          {6.5244, 3.3792},
	"nairobi":        {-1.2921, 36.8219},
	"london":         {51.5074, -0.1278},
	"paris":          {48.8566, 2.3522},
	"lisbon":         {38.7223, -9.1393},
	"athens":         {37.9838, 23.7275},
	"san francisco":  {37.7749, -122.4194},
	"los angeles":    {34.0522, -118.2437},
	"new york":       {40.7128, -74.0060},
	"mexico city":    {19.4326, -99.1332},
	"port-au-prince": {18.5944, -72.3074},
	"lima":           {-12.0464, -77.0428},
	"santiago":       {-33.4489, -70.6693},
	"sydney":         {-33.8688, 151.2093},
	"wellington":     {-41.2866, 174.7756},
}

// Resolve looks up a free-text place name and returns its coordinates, or
// the (0,0) sentinel on a miss. Lookup is case-insensitive and trimmed; for
// "City, Country" forms that miss, the leading segment is tried on its own.
// No network call happens on this path.
func Resolve(place string) (lat, lng float64) {
	key := strings.ToLower(strings.TrimSpace(place))
	if key == "" {
		return SentinelLat, SentinelLng
	}

	if c, ok := gazetteer[key]; ok {
		return c.lat, c.lng
	}

	if i := strings.Index(key, ","); i > 0 {
		if c, ok := gazetteer[strings.TrimSpace(key[:i])]; ok {
			return c.lat, c.lng
		}
	}

	return SentinelLat, SentinelLng
}
