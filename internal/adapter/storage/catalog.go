package storage

import (
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

// MusicShopCatalog is the inventory the shop is seeded with.
func MusicShopCatalog() []domain.InventoryItem {
	return []domain.InventoryItem{
		{ID: 1, Name: "Stratocaster", Image: "strat.jpg", Description: "One of the most iconic electric guitars ever made.", Price: decimal.RequireFromString("599.99"), Quantity: 3},
		{ID: 2, Name: "Mini Amp", Image: "amp.jpg", Description: "A small practice amp that shouldn't annoy roommates or neighbors.", Price: decimal.RequireFromString("49.99"), Quantity: 10},
		{ID: 3, Name: "Bass Guitar", Image: "bass.jpg", Description: "A four string electric bass guitar.", Price: decimal.RequireFromString("399.99"), Quantity: 10},
		{ID: 4, Name: "Acoustic Guitar", Image: "acoustic.jpg", Description: "Perfect for campfire sing-alongs.", Price: decimal.RequireFromString("799.99"), Quantity: 4},
		{ID: 5, Name: "Ukulele", Image: "ukulele.jpg", Description: "A four string tenor ukulele tuned GCEA.", Price: decimal.RequireFromString("99.99"), Quantity: 15},
		{ID: 6, Name: "Strap", Image: "strap.jpg", Description: "Woven instrument strap keeps your guitar or bass strapped to you to allow playing while standing.", Price: decimal.RequireFromString("29.99"), Quantity: 20},
		{ID: 7, Name: "Assortment of Picks", Image: "picks.jpg", Description: "Picks for acoustic or electric players.", Price: decimal.RequireFromString("9.99"), Quantity: 50},
		{ID: 8, Name: "Guitar Strings", Image: "strings.jpg", Description: "High quality wound strings for your acoustic or electric guitar or bass.", Price: decimal.RequireFromString("12.99"), Quantity: 20},
		{ID: 9, Name: "Instrument Cable", Image: "cable.jpg", Description: "A cable to connect an electric guitar or bass to an amplifier.", Price: decimal.RequireFromString("19.99"), Quantity: 15},
	}
}
