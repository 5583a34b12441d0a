package directory

import "strings"

// Contact is a directory entry that can be dialed.
// PhoneNumber is always set; entries without one are dropped at the boundary.
type Contact struct {
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number"`
}

// graphContact mirrors the projected Graph contact resource.
type graphContact struct {
	DisplayName    string   `json:"displayName"`
	MobilePhone    *string  `json:"mobilePhone"`
	BusinessPhones []string `json:"businessPhones"`
}

type contactsPage struct {
	Value    []graphContact `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// toContact prefers the mobile number, falls back to the first business
// number, and reports false when neither is present.
func (g graphContact) toContact() (Contact, bool) {
	phone := ""
	if g.MobilePhone != nil {
		phone = strings.TrimSpace(*g.MobilePhone)
	}
	if phone == "" {
		for _, p := range g.BusinessPhones {
			if p = strings.TrimSpace(p); p != "" {
				phone = p
				break
			}
		}
	}
	if phone == "" {
		return Contact{}, false
	}

	name := strings.TrimSpace(g.DisplayName)
	if name == "" {
		name = "No Name"
	}
	return Contact{DisplayName: name, PhoneNumber: phone}, true
}
