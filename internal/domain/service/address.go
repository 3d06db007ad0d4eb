package service

import (
	"strings"

	"slem/internal/domain/entity"
)

var sierraLeoneLocations = []string{
	// Western Area
	"Freetown", "Western Area Urban", "Western Area Rural",
	// Northern Province
	"Bombali", "Tonkolili", "Kambia", "Port Loko", "Koinadugu", "Falaba", "Karene",
	// Southern Province
	"Bo", "Bonthe", "Moyamba", "Pujehun",
	// Eastern Province
	"Kenema", "Kailahun", "Kono",
}

// IsDeliverableAddress reports whether the address names a known district or city.
// Matching is on whole words so "Bo" does not match "Boston".
func IsDeliverableAddress(details string) bool {
	normalized := " " + strings.ToLower(strings.Join(strings.FieldsFunc(details, isSeparator), " ")) + " "
	for _, loc := range sierraLeoneLocations {
		if strings.Contains(normalized, " "+strings.ToLower(loc)+" ") {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '.' || r == '-' || r == '\n' || r == '\t' || r == '/'
}

// NormalizeDefault keeps exactly one default address while the list is non-empty.
// preferred wins when it exists; otherwise the first flagged entry, otherwise the first entry.
func NormalizeDefault(addresses []entity.DeliveryAddress, preferred string) {
	if len(addresses) == 0 {
		return
	}

	chosen := -1
	for i, a := range addresses {
		if preferred != "" && a.ID == preferred {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		for i, a := range addresses {
			if a.IsDefault {
				chosen = i
				break
			}
		}
	}
	if chosen < 0 {
		chosen = 0
	}

	for i := range addresses {
		addresses[i].IsDefault = i == chosen
	}
}
