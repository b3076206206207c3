package models

type Address struct {
	Line1    string `json:"line1,omitempty" mapstructure:"line1"`
	City     string `json:"city,omitempty" mapstructure:"city"`
	Postcode string `json:"postcode,omitempty" mapstructure:"postcode"`
}
