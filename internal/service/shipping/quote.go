package shipping

import (
	"strings"

	"storefront/internal/domain"
)

type zone string

const (
	zoneUS      zone = "US"
	zoneCA      zone = "CA"
	zoneUK      zone = "UK"
	zoneEU      zone = "EU"
	zoneAsia    zone = "ASIA"
	zoneOceania zone = "OCEANIA"
)

// Service levels in quote order.
var services = []struct {
	id    string
	title string
}{
	{"standard", "Standard"},
	{"express", "Express"},
	{"next_day", "Next Day"},
}

var countryZones = map[string]zone{
	"US": zoneUS,
	"CA": zoneCA,
	"GB": zoneUK,
	"UK": zoneUK,
	"DE": zoneEU,
	"FR": zoneEU,
	"IT": zoneEU,
	"ES": zoneEU,
	"CN": zoneAsia,
	"JP": zoneAsia,
	"KR": zoneAsia,
	"AU": zoneOceania,
	"NZ": zoneOceania,
}

var zoneRates = map[zone]map[string]domain.Money{
	zoneUS:      {"standard": 599, "express": 1299, "next_day": 2499},
	zoneCA:      {"standard": 799, "express": 1599, "next_day": 2999},
	zoneUK:      {"standard": 899, "express": 1699, "next_day": 3499},
	zoneEU:      {"standard": 999, "express": 1899, "next_day": 3999},
	zoneAsia:    {"standard": 1299, "express": 2499, "next_day": 4999},
	zoneOceania: {"standard": 1499, "express": 2999, "next_day": 5999},
}

var deliveryDays = map[string]map[zone]string{
	"standard": {
		zoneUS: "3-5 days", zoneCA: "4-6 days", zoneUK: "4-6 days",
		zoneEU: "5-7 days", zoneAsia: "7-10 days", zoneOceania: "8-12 days",
	},
	"express": {
		zoneUS: "2-3 days", zoneCA: "2-3 days", zoneUK: "2-3 days",
		zoneEU: "2-3 days", zoneAsia: "3-5 days", zoneOceania: "3-5 days",
	},
	"next_day": {
		zoneUS: "1 day", zoneCA: "1-2 days", zoneUK: "1-2 days",
		zoneEU: "1-2 days", zoneAsia: "2-3 days", zoneOceania: "2-3 days",
	},
}

const (
	remoteSurcharge domain.Money = 500
	fallbackDays                 = "5-7 days"
)

// Quote prices each service level for country and postal code. Unknown countries are
// quoted at US rates; postal codes starting with 9 carry a remote area surcharge.
func Quote(country, postalCode string) ([]domain.ShippingRate, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		return nil, domain.Invalid("country", "required")
	}
	z, ok := countryZones[country]
	if !ok {
		z = zoneUS
	}
	surcharge := domain.Money(0)
	if strings.HasPrefix(strings.TrimSpace(postalCode), "9") {
		surcharge = remoteSurcharge
	}

	rates := make([]domain.ShippingRate, 0, len(services))
	for _, svc := range services {
		days, ok := deliveryDays[svc.id][z]
		if !ok {
			days = fallbackDays
		}
		rates = append(rates, domain.ShippingRate{
			ID:            svc.id,
			Name:          svc.title + " Shipping",
			Description:   "Delivery in " + days,
			Cost:          zoneRates[z][svc.id] + surcharge,
			EstimatedDays: days,
		})
	}
	return rates, nil
}
