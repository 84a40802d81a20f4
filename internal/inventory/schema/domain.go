package schema

import (
	"inventory-workers/internal/inventory/textnorm"
	"inventory-workers/internal/models"
)

// Domain is the detected business type of a dataset.
type Domain string

const (
	DomainPharmacy Domain = "pharmacy"
	DomainSales    Domain = "sales"
	DomainRetail   Domain = "retail"
)

var dosageUnits = map[string]bool{
	"mg": true, "ml": true, "mcg": true,
	"tabletas": true, "tableta": true, "capsulas": true, "comprimidos": true,
	"jarabe": true, "ampolla": true, "tablets": true, "capsules": true,
}

// DetectDomain classifies a dataset from its columns and, failing that, from
// dosage units in product names.
func DetectDomain(ds *models.InventoryDataset) Domain {
	if ds == nil {
		return DomainRetail
	}
	if ds.Has(models.FieldExpiryDate) {
		return DomainPharmacy
	}
	if ds.Has(models.FieldSalesperson) || ds.Has(models.FieldTotal) {
		return DomainSales
	}
	for _, rec := range ds.Records {
		for _, tok := range textnorm.Tokens(rec.Product, nil) {
			if dosageUnits[tok] || hasDosageSuffix(tok) {
				return DomainPharmacy
			}
		}
	}
	return DomainRetail
}

// hasDosageSuffix matches tokens such as "500mg" or "120ml".
func hasDosageSuffix(tok string) bool {
	for _, unit := range []string{"mg", "ml", "mcg"} {
		n := len(tok) - len(unit)
		if n > 0 && tok[n:] == unit && tok[n-1] >= '0' && tok[n-1] <= '9' {
			return true
		}
	}
	return false
}
