// README: Static price catalogs served by the public price endpoints.
package pricing

// CatalogItem is a flat-rate nursing or physiotherapy service.
type CatalogItem struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Unit        string `json:"unit"`
}

type AmbulanceCatalogItem struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	MinimumFare int64    `json:"minimumFare"`
	MinimumKm   float64  `json:"minimumKm"`
	PerKmCharge int64    `json:"perKmCharge"`
	Features    []string `json:"features"`
}

func (a AmbulanceCatalogItem) Rate() AmbulanceRate {
	return AmbulanceRate{
		MinimumFare: float64(a.MinimumFare),
		MinimumKm:   a.MinimumKm,
		PerKmCharge: float64(a.PerKmCharge),
	}
}

var nursingCatalog = []CatalogItem{
	{Code: "nurse-visit", Name: "Nurse Home Visit", Description: "Vitals check, medication and basic care", Price: 500, Unit: "visit"},
	{Code: "injection-iv", Name: "Injection / IV Administration", Description: "IM, IV or subcutaneous injection at home", Price: 350, Unit: "visit"},
	{Code: "wound-dressing", Name: "Wound Dressing", Description: "Surgical or chronic wound care", Price: 400, Unit: "visit"},
	{Code: "elderly-care-12h", Name: "Elderly Care Attendant", Description: "Trained attendant for daily living support", Price: 1000, Unit: "12-hour shift"},
	{Code: "nurse-12h", Name: "Home Nurse (12 hours)", Description: "Registered nurse, day or night shift", Price: 1200, Unit: "12-hour shift"},
	{Code: "post-op-care", Name: "Post-operative Care", Description: "Recovery monitoring after discharge", Price: 1500, Unit: "12-hour shift"},
	{Code: "icu-nurse-12h", Name: "ICU-trained Nurse", Description: "Critical care nurse for ventilated or tracheostomy patients", Price: 1800, Unit: "12-hour shift"},
	{Code: "nurse-24h", Name: "Live-in Nurse (24 hours)", Description: "Round-the-clock registered nurse", Price: 2000, Unit: "day"},
}

var physiotherapyCatalog = []CatalogItem{
	{Code: "physio-session", Name: "General Physiotherapy", Description: "Assessment and exercise therapy", Price: 600, Unit: "session"},
	{Code: "geriatric", Name: "Geriatric Physiotherapy", Description: "Mobility and fall-prevention programme", Price: 700, Unit: "session"},
	{Code: "ortho-rehab", Name: "Orthopaedic Rehabilitation", Description: "Fractures, joint replacement and back pain", Price: 800, Unit: "session"},
	{Code: "sports-injury", Name: "Sports Injury Rehabilitation", Description: "Ligament, tendon and muscle injuries", Price: 800, Unit: "session"},
	{Code: "pediatric", Name: "Paediatric Physiotherapy", Description: "Developmental delay and cerebral palsy", Price: 850, Unit: "session"},
	{Code: "post-surgery", Name: "Post-surgery Physiotherapy", Description: "Guided recovery after surgery", Price: 900, Unit: "session"},
	{Code: "neuro-rehab", Name: "Neurological Rehabilitation", Description: "Stroke, Parkinson's and spinal cord injury", Price: 1000, Unit: "session"},
}

var ambulanceCatalog = []AmbulanceCatalogItem{
	{Code: "patient-transport", Name: "Patient Transport Vehicle", MinimumFare: 500, MinimumKm: 5, PerKmCharge: 20, Features: []string{"Stretcher", "Wheelchair access"}},
	{Code: "bls", Name: "Basic Life Support", MinimumFare: 800, MinimumKm: 5, PerKmCharge: 25, Features: []string{"Oxygen", "First aid", "Trained EMT"}},
	{Code: "als", Name: "Advanced Life Support", MinimumFare: 1500, MinimumKm: 5, PerKmCharge: 40, Features: []string{"Cardiac monitor", "Defibrillator", "Paramedic"}},
	{Code: "icu-cardiac", Name: "ICU / Cardiac Ambulance", MinimumFare: 2500, MinimumKm: 5, PerKmCharge: 60, Features: []string{"Ventilator", "Infusion pumps", "Doctor on board"}},
	{Code: "mortuary", Name: "Mortuary Van", MinimumFare: 1200, MinimumKm: 10, PerKmCharge: 30, Features: []string{"Freezer box"}},
}

// NursingCatalog returns a copy of the nursing price list.
func NursingCatalog() []CatalogItem { return append([]CatalogItem(nil), nursingCatalog...) }

func PhysiotherapyCatalog() []CatalogItem {
	return append([]CatalogItem(nil), physiotherapyCatalog...)
}

func AmbulanceCatalog() []AmbulanceCatalogItem {
	return append([]AmbulanceCatalogItem(nil), ambulanceCatalog...)
}

func findItem(items []CatalogItem, code string) (CatalogItem, bool) {
	for _, it := range items {
		if it.Code == code {
			return it, true
		}
	}
	return CatalogItem{}, false
}

func findAmbulance(code string) (AmbulanceCatalogItem, bool) {
	for _, it := range ambulanceCatalog {
		if it.Code == code {
			return it, true
		}
	}
	return AmbulanceCatalogItem{}, false
}
