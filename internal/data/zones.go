package data

import "strings"

type ZoneType string

const (
	ZoneTypeZone ZoneType = "zone"
	ZoneTypeHub  ZoneType = "hub"
)

// Zone is a PJM pricing location the dashboard can select.
type Zone struct {
	ID          string   `json:"zone_id"`
	DisplayName string   `json:"display_name"`
	Type        ZoneType `json:"type"`
	SortOrder   int      `json:"sort_order"`
}

var zones = []Zone{
	{"AEP", "AEP Zone", ZoneTypeZone, 1},
	{"AECO", "AECO Zone", ZoneTypeZone, 2},
	{"APS", "APS Zone", ZoneTypeZone, 3},
	{"ATSI", "ATSI Zone", ZoneTypeZone, 4},
	{"BGE", "BGE Zone", ZoneTypeZone, 5},
	{"COMED", "ComEd Zone", ZoneTypeZone, 6},
	{"DAY", "Dayton Zone", ZoneTypeZone, 7},
	{"DEOK", "Duke Ohio/KY Zone", ZoneTypeZone, 8},
	{"DOM", "Dominion Zone", ZoneTypeZone, 9},
	{"DPL", "Delmarva Zone", ZoneTypeZone, 10},
	{"DUQ", "Duquesne Zone", ZoneTypeZone, 11},
	{"EKPC", "East KY Power Zone", ZoneTypeZone, 12},
	{"JCPL", "Jersey Central Zone", ZoneTypeZone, 13},
	{"METED", "Met-Ed Zone", ZoneTypeZone, 14},
	{"OVEC", "Ohio Valley Zone", ZoneTypeZone, 15},
	{"PECO", "PECO Zone", ZoneTypeZone, 16},
	{"PENELEC", "Penelec Zone", ZoneTypeZone, 17},
	{"PEPCO", "Pepco Zone", ZoneTypeZone, 18},
	{"PJM-RTO", "PJM RTO (System)", ZoneTypeZone, 19},
	{"PPL", "PPL Zone", ZoneTypeZone, 20},
	{"PSEG", "PSEG Zone", ZoneTypeZone, 21},
	{"RECO", "Rockland Zone", ZoneTypeZone, 22},
	{"WEST HUB", "Western Hub", ZoneTypeHub, 23},
	{"EAST HUB", "Eastern Hub", ZoneTypeHub, 24},
}

// Zones returns the selectable zones in display order. The slice is a copy.
func Zones() []Zone {
	return append([]Zone(nil), zones...)
}

// ZoneIDs returns the IDs of transmission zones only (hubs excluded).
func ZoneIDs() []string {
	out := make([]string, 0, len(zones))
	for _, z := range zones {
		if z.Type == ZoneTypeZone {
			out = append(out, z.ID)
		}
	}
	return out
}

// LookupZone resolves id case-insensitively; underscores match spaces so
// "west_hub" finds "WEST HUB".
func LookupZone(id string) (Zone, bool) {
	key := strings.ToUpper(strings.TrimSpace(strings.ReplaceAll(id, "_", " ")))
	for _, z := range zones {
		if z.ID == key {
			return z, true
		}
	}
	return Zone{}, false
}
