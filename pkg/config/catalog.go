package config

import (
	"fmt"
	"os"

	"github.com/AtRiskMedia/scarcity-go/internal/domain/inventory"
	"github.com/AtRiskMedia/scarcity-go/internal/domain/scarcity"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PackageConfig is one sellable package.
type PackageConfig struct {
	ID        string          `yaml:"id" json:"id"`
	Name      string          `yaml:"name" json:"name"`
	Total     uint            `yaml:"total" json:"total"`
	UnitPrice decimal.Decimal `yaml:"unitPrice" json:"unitPrice"`
}

// Catalog is the static package table loaded once at startup.
type Catalog struct {
	Packages   []PackageConfig `yaml:"packages"`
	Tiers      []scarcity.Tier `yaml:"tiers"`
	Headlines  []string        `yaml:"headlines"`
	Activities []string        `yaml:"activities"`
}

// LoadCatalog reads a YAML catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return &catalog, nil
}

// Validate checks ids, capacities, prices and tier references.
func (c *Catalog) Validate() error {
	if len(c.Packages) == 0 {
		return fmt.Errorf("catalog: no packages defined")
	}
	seen := make(map[string]bool, len(c.Packages))
	for _, p := range c.Packages {
		if p.ID == "" {
			return fmt.Errorf("catalog: package id must not be empty")
		}
		if seen[p.ID] {
			return fmt.Errorf("catalog: duplicate package %q", p.ID)
		}
		if p.Total == 0 {
			return fmt.Errorf("catalog: package %q must have a positive total", p.ID)
		}
		if p.UnitPrice.IsNegative() {
			return fmt.Errorf("catalog: package %q has negative unit price %s", p.ID, p.UnitPrice)
		}
		seen[p.ID] = true
	}
	for _, t := range c.Tiers {
		if !seen[t.From] || !seen[t.To] {
			return fmt.Errorf("catalog: tier %s -> %s references an unknown package", t.From, t.To)
		}
		if t.From == t.To {
			return fmt.Errorf("catalog: tier %s points at itself", t.From)
		}
	}
	return nil
}

// InventoryPackages converts the catalog into engine package definitions.
func (c *Catalog) InventoryPackages() []inventory.Package {
	pkgs := make([]inventory.Package, 0, len(c.Packages))
	for _, p := range c.Packages {
		pkgs = append(pkgs, inventory.Package{ID: p.ID, Total: p.Total})
	}
	return pkgs
}

// Names maps package ids to display names, falling back to the id.
func (c *Catalog) Names() map[string]string {
	names := make(map[string]string, len(c.Packages))
	for _, p := range c.Packages {
		name := p.Name
		if name == "" {
			name = p.ID
		}
		names[p.ID] = name
	}
	return names
}

// Prices maps package ids to unit prices.
func (c *Catalog) Prices() map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(c.Packages))
	for _, p := range c.Packages {
		prices[p.ID] = p.UnitPrice
	}
	return prices
}

// Package looks up one package by id.
func (c *Catalog) Package(id string) (PackageConfig, bool) {
	for _, p := range c.Packages {
		if p.ID == id {
			return p, true
		}
	}
	return PackageConfig{}, false
}
