package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/jarvis/internal/domain/food"
)

// File is the on-disk seed catalog: restaurants with their menus.
type File struct {
	Restaurants []RestaurantEntry `yaml:"restaurants"`
}

// RestaurantEntry is one restaurant of a seed file.
type RestaurantEntry struct {
	ID            string      `yaml:"id"`
	Name          string      `yaml:"name"`
	Description   string      `yaml:"description"`
	Cuisine       []string    `yaml:"cuisine"`
	Rating        float64     `yaml:"rating"`
	DeliveryTime  string      `yaml:"delivery_time"`
	Address       string      `yaml:"address"`
	IsOpen        *bool       `yaml:"is_open"`
	DeliveryFee   float64     `yaml:"delivery_fee"`
	MinimumOrder  float64     `yaml:"minimum_order"`
	SpecialOffers []string    `yaml:"special_offers"`
	Menu          []MenuEntry `yaml:"menu"`
}

// MenuEntry is one dish of a seed file.
type MenuEntry struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Price           float64  `yaml:"price"`
	Description     string   `yaml:"description"`
	Category        string   `yaml:"category"`
	Vegetarian      bool     `yaml:"vegetarian"`
	Vegan           bool     `yaml:"vegan"`
	Tags            []string `yaml:"tags"`
	Rating          float64  `yaml:"rating"`
	Calories        int      `yaml:"calories"`
	PreparationTime int      `yaml:"preparation_time"`
}

// LoadFile reads and validates a YAML seed catalog.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return File{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return File{}, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return f, nil
}

// Validate checks ids are present and unique and prices are not negative.
func (f File) Validate() error {
	restIDs := make(map[string]struct{}, len(f.Restaurants))
	itemIDs := make(map[string]struct{})
	for i, r := range f.Restaurants {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("restaurant #%d: id and name are required", i)
		}
		if _, dup := restIDs[r.ID]; dup {
			return fmt.Errorf("restaurant %q: duplicate id", r.ID)
		}
		restIDs[r.ID] = struct{}{}
		for j, m := range r.Menu {
			if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
				return fmt.Errorf("restaurant %q item #%d: id and name are required", r.ID, j)
			}
			if _, dup := itemIDs[m.ID]; dup {
				return fmt.Errorf("item %q: duplicate id", m.ID)
			}
			itemIDs[m.ID] = struct{}{}
			if m.Price < 0 {
				return errors.New("item " + m.ID + ": price must not be negative")
			}
		}
	}
	return nil
}

// Records flattens the file into domain records ready for Seed.
func (f File) Records() ([]food.Restaurant, []food.FoodItem) {
	restaurants := make([]food.Restaurant, 0, len(f.Restaurants))
	var items []food.FoodItem
	for _, r := range f.Restaurants {
		isOpen := true
		if r.IsOpen != nil {
			isOpen = *r.IsOpen
		}
		restaurants = append(restaurants, food.Restaurant{
			RestaurantRef: food.RestaurantRef{
				ID:           r.ID,
				Name:         r.Name,
				Rating:       r.Rating,
				Cuisine:      r.Cuisine,
				DeliveryTime: r.DeliveryTime,
			},
			Description:   r.Description,
			Address:       r.Address,
			IsOpen:        isOpen,
			DeliveryFee:   r.DeliveryFee,
			MinimumOrder:  r.MinimumOrder,
			SpecialOffers: r.SpecialOffers,
		})
		for _, m := range r.Menu {
			items = append(items, food.FoodItem{
				ID:              m.ID,
				Name:            m.Name,
				Price:           m.Price,
				Description:     m.Description,
				Category:        m.Category,
				IsVegetarian:    m.Vegetarian || m.Vegan,
				IsVegan:         m.Vegan,
				Tags:            m.Tags,
				Rating:          m.Rating,
				Calories:        m.Calories,
				PreparationTime: m.PreparationTime,
				RestaurantID:    r.ID,
			})
		}
	}
	return restaurants, items
}
