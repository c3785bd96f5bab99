package quality

import "sort"

type latLng struct {
	lat float64
	lng float64
}

// Static gazetteer of major cities, countries and regions that show up in
// crisis reporting. Country entries resolve to the capital.
var gazetteer = map[string]latLng{
	"New York, USA":       {40.7128, -74.0060},
	"London, UK":          {51.5074, -0.1278},
	"Tokyo, Japan":        {35.6762, 139.6503},
	"Seoul, South Korea":  {37.5665, 126.9780},
	"Beijing, China":      {39.9042, 116.4074},
	"Moscow, Russia":      {55.7558, 37.6176},
	"Kiev, Ukraine":       {50.4501, 30.5234},
	"Istanbul, Turkey":    {41.0082, 28.9784},
	"Tehran, Iran":        {35.6892, 51.3890},
	"Damascus, Syria":     {33.5138, 36.2765},
	"Baghdad, Iraq":       {33.3152, 44.3661},
	"Kabul, Afghanistan":  {34.5553, 69.2075},
	"Islamabad, Pakistan": {33.6844, 73.0479},
	"New Delhi, India":    {28.6139, 77.2090},
	"Jakarta, Indonesia":  {-6.2088, 106.8456},
	"Manila, Philippines": {14.5995, 120.9842},
	"Bangkok, Thailand":   {13.7563, 100.5018},
	"Yangon, Myanmar":     {16.8661, 96.1951},
	"Dhaka, Bangladesh":   {23.8103, 90.4125},
	"Kathmandu, Nepal":    {27.7172, 85.3240},
	"Colombo, Sri Lanka":  {6.9271, 79.8612},

	"Ukraine":     {50.4501, 30.5234},
	"Russia":      {55.7558, 37.6176},
	"Syria":       {33.5138, 36.2765},
	"Iraq":        {33.3152, 44.3661},
	"Afghanistan": {34.5553, 69.2075},
	"Pakistan":    {33.6844, 73.0479},
	"India":       {28.6139, 77.2090},
	"China":       {39.9042, 116.4074},
	"Japan":       {35.6762, 139.6503},
	"Turkey":      {41.0082, 28.9784},
	"Iran":        {35.6892, 51.3890},
	"Israel":      {31.7683, 35.2137},
	"Palestine":   {31.9522, 35.2332},
	"Lebanon":     {33.8547, 35.8623},
	"Yemen":       {15.5527, 48.5164},
	"Sudan":       {15.5007, 32.5599},
	"Ethiopia":    {9.1450, 40.4897},
	"Myanmar":     {16.8661, 96.1951},
	"Bangladesh":  {23.8103, 90.4125},
	"Nepal":       {27.7172, 85.3240},
	"Sri Lanka":   {6.9271, 79.8612},

	"California, USA": {36.7783, -119.4179},
	"Texas, USA":      {31.9686, -99.9018},
	"Florida, USA":    {27.7663, -82.6404},
}

// gazetteerKeys fixes the lookup order for partial matches so the same
// location always resolves to the same entry.
var gazetteerKeys = sortedGazetteerKeys()

func sortedGazetteerKeys() []string {
	keys := make([]string, 0, len(gazetteer))
	for key := range gazetteer {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
