// README: Geography classifier mapping a city/address pair to a pricing tier.
package pricing

import "strings"

type Tier string

const (
	TierPremium Tier = "premium"
	Tier1       Tier = "tier-1"
	Tier2       Tier = "tier-2"
	Tier3       Tier = "tier-3"
)

type tierRate struct {
	Multiplier    float64
	AdjustmentPct int
}

// tierRates is the single source of truth for geography multipliers.
var tierRates = map[Tier]tierRate{
	TierPremium: {Multiplier: 1.30, AdjustmentPct: 30},
	Tier1:       {Multiplier: 1.20, AdjustmentPct: 20},
	Tier2:       {Multiplier: 1.10, AdjustmentPct: 10},
	Tier3:       {Multiplier: 1.00, AdjustmentPct: 0},
}

// Multiplier returns the price multiplier for t. Unknown tiers price at base rate.
func (t Tier) Multiplier() float64 {
	if r, ok := tierRates[t]; ok {
		return r.Multiplier
	}
	return 1.0
}

// AdjustmentPct returns the tier multiplier expressed as a signed percentage.
func (t Tier) AdjustmentPct() int {
	return tierRates[t].AdjustmentPct
}

// premiumLocalities are matched as substrings of the address or the city.
var premiumLocalities = []string{
	"mvp colony",
	"siripuram",
	"rushikonda",
	"beach road",
	"seethammadhara",
	"dabagardens",
	"lawsons bay",
	"banjara hills",
	"jubilee hills",
	"gachibowli",
	"koramangala",
	"indiranagar",
	"bandra",
	"juhu",
	"worli",
	"powai",
	"boat club",
	"poes garden",
	"golf links",
	"vasant vihar",
}

var tier1Cities = []string{
	"visakhapatnam",
	"vizag",
	"hyderabad",
	"secunderabad",
	"bangalore",
	"bengaluru",
	"mumbai",
	"delhi",
	"new delhi",
	"chennai",
	"kolkata",
	"pune",
	"ahmedabad",
	"gurgaon",
	"gurugram",
	"noida",
}

var tier2Cities = []string{
	"vijayawada",
	"guntur",
	"nellore",
	"kakinada",
	"rajahmundry",
	"rajamahendravaram",
	"tirupati",
	"vizianagaram",
	"srikakulam",
	"anakapalli",
	"warangal",
	"coimbatore",
	"madurai",
	"mysore",
	"mysuru",
	"mangalore",
	"kochi",
	"thiruvananthapuram",
	"nagpur",
	"nashik",
	"indore",
	"bhopal",
	"lucknow",
	"jaipur",
	"chandigarh",
	"bhubaneswar",
	"surat",
	"vadodara",
}

// Classify maps a free-text city and address to a pricing tier. A blank city
// always prices at tier-3, even when the address names a premium locality.
// Premium localities win over city tiers.
func Classify(city, address string) Tier {
	c := strings.ToLower(strings.TrimSpace(city))
	if c == "" {
		return Tier3
	}
	a := strings.ToLower(strings.TrimSpace(address))

	for _, loc := range premiumLocalities {
		if strings.Contains(a, loc) || strings.Contains(c, loc) {
			return TierPremium
		}
	}
	if matchesCity(c, tier1Cities) {
		return Tier1
	}
	if matchesCity(c, tier2Cities) {
		return Tier2
	}
	return Tier3
}

// matchesCity accepts containment in either direction so that "Vizag" and
// "Visakhapatnam City" both resolve without a geocoder.
func matchesCity(city string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(city, k) || strings.Contains(k, city) {
			return true
		}
	}
	return false
}
