package platform

const zomatoBaseURL = "https://www.zomato.com"

// ZomatoAdapter scrapes zomato.com. It has no native cart verification or
// removal, commit checks run through the generic cart view instead.
type ZomatoAdapter struct {
	site
}

// NewZomato builds the Zomato adapter with its own isolated session.
func NewZomato(opts Options) (*ZomatoAdapter, error) {
	session, err := NewSession(zomatoBaseURL, opts)
	if err != nil {
		return nil, err
	}
	return &ZomatoAdapter{site: site{
		name:    "Zomato",
		baseURL: zomatoBaseURL,
		cartURL: zomatoBaseURL + "/cart",
		session: session,
		sel: selectors{
			cards:      "a[href*='/restaurant/'], a[href*='/order/'], div[data-testid*='resCard']",
			names:      []string{"h4", "h3", "div[class*='name']", "p[class*='name']"},
			rating:     "div[aria-label*='rating'], div[class*='rating']",
			cartItems:  "div[class*='cart-item']",
			cartName:   "p[class*='name'], div[class*='name']",
			cartPrice:  "span[class*='price'], p[class*='price']",
			cartRemove: "a[class*='remove']",
		},
	}}, nil
}
