package trigger

// Sliding zones span 8 rows every 4 rows. Each sliding zone belongs to the
// zone holding its fourth row.
const (
	NumberOfSlidingZones   = 28
	SlidingZoneRows        = 8
	slidingZoneStep        = 4
	slidingZoneAnchor      = 3
	NumberOfZones          = 10
	MaxSlidingZonesPerZone = 5
)

// zoneLimits holds the first and last row of each zone.
var zoneLimits = [NumberOfZones][2]int{
	{0, 8}, {9, 20}, {21, 32}, {33, 44}, {45, 56},
	{57, 67}, {68, 79}, {80, 91}, {92, 103}, {104, 112},
}

// SlidingZoneRowRange returns the first and last row of a sliding zone.
func SlidingZoneRowRange(slz int) (int, int) {
	first := slz * slidingZoneStep
	last := min(first+SlidingZoneRows-1, TrackerRows-1)
	return first, last
}

func ZoneRowRange(zone int) (int, int) {
	return zoneLimits[zone][0], zoneLimits[zone][1]
}

// ZoneOfSlidingZone returns the zone a sliding zone folds into.
func ZoneOfSlidingZone(slz int) int {
	anchor := slz*slidingZoneStep + slidingZoneAnchor
	for zone, limits := range zoneLimits {
		if anchor >= limits[0] && anchor <= limits[1] {
			return zone
		}
	}
	return NumberOfZones - 1
}

// slidingZonesOfZone lists the sliding zones of every zone, in row order.
var slidingZonesOfZone = func() [NumberOfZones][]int {
	var zones [NumberOfZones][]int
	for slz := 0; slz < NumberOfSlidingZones; slz++ {
		zone := ZoneOfSlidingZone(slz)
		zones[zone] = append(zones[zone], slz)
	}
	return zones
}()

func SlidingZonesOfZone(zone int) []int {
	return slidingZonesOfZone[zone]
}
