package entities

import (
	"rescuesim/pkg/engine/world"
)

// HazardInfo contains display information for each hazard level
type HazardInfo struct {
	Name   string
	Icon   string
	Symbol rune // Plain ASCII used by map dumps
}

// HazardTypes maps hazard levels to their display information
var HazardTypes = map[world.Hazard]HazardInfo{
	world.HazardNone: {
		Name:   "Clear",
		Icon:   "·",
		Symbol: '.',
	},
	world.HazardSmoke: {
		Name:   "Smoke",
		Icon:   "░",
		Symbol: 's',
	},
	world.HazardFire: {
		Name:   "Fire",
		Icon:   "▲",
		Symbol: 'F',
	},
}

// POIInfo contains display information for each point of interest kind
type POIInfo struct {
	Name   string
	Icon   string
	Symbol rune
}

// POITypes maps point of interest kinds to their display information
var POITypes = map[world.POI]POIInfo{
	world.POIFalseAlarm: {
		Name:   "False alarm",
		Icon:   "?",
		Symbol: 'f',
	},
	world.POIVictim: {
		Name:   "Victim",
		Icon:   "✚",
		Symbol: 'v',
	},
}

// GetHazardIcon returns the icon for a hazard level
func GetHazardIcon(h world.Hazard) string {
	return HazardTypes[h].Icon
}

// GetPOIIcon returns the icon for a point of interest kind, or "" for none
func GetPOIIcon(p world.POI) string {
	return POITypes[p].Icon
}
