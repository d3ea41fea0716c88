// utils/phone.go
package utils

import "strings"

// Dial code to country name, covering the markets the portal serves.
var dialCodeCountries = map[string]string{
	"1":   "Estados Unidos / Canadá",
	"34":  "España",
	"39":  "Italia",
	"44":  "Reino Unido",
	"49":  "Alemania",
	"51":  "Perú",
	"52":  "México",
	"54":  "Argentina",
	"55":  "Brasil",
	"56":  "Chile",
	"57":  "Colombia",
	"58":  "Venezuela",
	"502": "Guatemala",
	"503": "El Salvador",
	"504": "Honduras",
	"505": "Nicaragua",
	"506": "Costa Rica",
	"507": "Panamá",
	"509": "Haití",
	"593": "Ecuador",
	"595": "Paraguay",
	"598": "Uruguay",
}

// CountryForPhone resolves the country for an international phone number by
// its dial code. Longest prefix wins. Numbers without a + prefix, or with an
// unknown code, resolve to nothing.
func CountryForPhone(phone string) (string, bool) {
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	if !strings.HasPrefix(cleaned, "+") {
		return "", false
	}
	digits := cleaned[1:]
	for l := 3; l >= 1; l-- {
		if len(digits) < l {
			continue
		}
		if country, ok := dialCodeCountries[digits[:l]]; ok {
			return country, true
		}
	}
	return "", false
}
