package enums

import "fmt"

// MenuCategory groups menu items by course.
type MenuCategory string

const (
	MenuCategoryAppetizer MenuCategory = "appetizer"
	MenuCategoryMain      MenuCategory = "main"
	MenuCategoryDessert   MenuCategory = "dessert"
	MenuCategoryBeverage  MenuCategory = "beverage"
	MenuCategoryCombo     MenuCategory = "combo"
)

var validMenuCategories = []MenuCategory{
	MenuCategoryAppetizer,
	MenuCategoryMain,
	MenuCategoryDessert,
	MenuCategoryBeverage,
	MenuCategoryCombo,
}

// String implements fmt.Stringer.
func (c MenuCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known MenuCategory.
func (c MenuCategory) IsValid() bool {
	for _, candidate := range validMenuCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseMenuCategory converts raw input into a MenuCategory.
func ParseMenuCategory(value string) (MenuCategory, error) {
	for _, candidate := range validMenuCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid menu category %q", value)
}

// Cuisine tags the regional style of a menu item.
type Cuisine string

const (
	CuisineChinese    Cuisine = "chinese"
	CuisineIndian     Cuisine = "indian"
	CuisineThai       Cuisine = "thai"
	CuisineJapanese   Cuisine = "japanese"
	CuisineKorean     Cuisine = "korean"
	CuisineVietnamese Cuisine = "vietnamese"
	CuisineFusion     Cuisine = "fusion"
	CuisineAsian      Cuisine = "asian"
)

var validCuisines = []Cuisine{
	CuisineChinese,
	CuisineIndian,
	CuisineThai,
	CuisineJapanese,
	CuisineKorean,
	CuisineVietnamese,
	CuisineFusion,
	CuisineAsian,
}

// String implements fmt.Stringer.
func (c Cuisine) String() string {
	return string(c)
}

// IsValid reports whether the value is a known Cuisine.
func (c Cuisine) IsValid() bool {
	for _, candidate := range validCuisines {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCuisine converts raw input into a Cuisine.
func ParseCuisine(value string) (Cuisine, error) {
	for _, candidate := range validCuisines {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cuisine %q", value)
}

// DietaryTag flags dietary properties of a menu item.
type DietaryTag string

const (
	DietaryVegetarian DietaryTag = "vegetarian"
	DietaryVegan      DietaryTag = "vegan"
	DietaryGlutenFree DietaryTag = "gluten-free"
	DietaryHalal      DietaryTag = "halal"
	DietarySpicy      DietaryTag = "spicy"
	DietaryDairyFree  DietaryTag = "dairy-free"
)

var validDietaryTags = []DietaryTag{
	DietaryVegetarian,
	DietaryVegan,
	DietaryGlutenFree,
	DietaryHalal,
	DietarySpicy,
	DietaryDairyFree,
}

// String implements fmt.Stringer.
func (d DietaryTag) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DietaryTag.
func (d DietaryTag) IsValid() bool {
	for _, candidate := range validDietaryTags {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDietaryTag converts raw input into a DietaryTag.
func ParseDietaryTag(value string) (DietaryTag, error) {
	for _, candidate := range validDietaryTags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dietary tag %q", value)
}
