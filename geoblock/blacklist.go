// Countries whose users are geo-blocked
package geoblock

type CountryEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var locationBlacklist = []CountryEntry{
	{Code: "AG", Name: "Antigua and Barbuda"},
	{Code: "DZ", Name: "Algeria"},
	{Code: "BD", Name: "Bangladesh"},
	{Code: "BO", Name: "Bolivia"},
	{Code: "BY", Name: "Belarus"},
	{Code: "BI", Name: "Burundi"},
	{Code: "MM", Name: "Burma (Myanmar)"},
	{Code: "CI", Name: "Cote D'Ivoire (Ivory Coast)"},
	{Code: "CU", Name: "Cuba"},
	{Code: "CD", Name: "Democratic Republic of Congo"},
	{Code: "EC", Name: "Ecuador"},
	{Code: "IR", Name: "Iran"},
	{Code: "IQ", Name: "Iraq"},
	{Code: "LR", Name: "Liberia"},
	{Code: "LY", Name: "Libya"},
	{Code: "ML", Name: "Mali"},
	{Code: "MA", Name: "Morocco"},
	{Code: "NP", Name: "Nepal"},
	{Code: "KP", Name: "North Korea"},
	{Code: "SO", Name: "Somalia"},
	{Code: "SD", Name: "Sudan"},
	{Code: "SY", Name: "Syria"},
	{Code: "VE", Name: "Venezuela"},
	{Code: "YE", Name: "Yemen"},
	{Code: "ZW", Name: "Zimbabwe"},
	{Code: "US", Name: "United States"},
}

// key: country code
var blacklistByCode = make(map[string]CountryEntry, len(locationBlacklist))

func init() {
	for _, entry := range locationBlacklist {
		blacklistByCode[entry.Code] = entry
	}
}

// BlacklistedCountry matches the code exactly, codes are upper case.
func BlacklistedCountry(code string) (CountryEntry, bool) {
	entry, ok := blacklistByCode[code]
	return entry, ok
}

func IsBlacklistedCountry(code string) bool {
	_, ok := blacklistByCode[code]
	return ok
}

// LocationBlacklist returns a copy of the blacklist in declaration order.
func LocationBlacklist() []CountryEntry {
	out := make([]CountryEntry, len(locationBlacklist))
	copy(out, locationBlacklist)
	return out
}
