package amazon

// PA-API 5 response shapes, trimmed to the resources we request.

type searchItemsResponse struct {
	SearchResult struct {
		Items []apiItem `json:"Items"`
	} `json:"SearchResult"`
}

type getItemsResponse struct {
	ItemsResult struct {
		Items []apiItem `json:"Items"`
	} `json:"ItemsResult"`
}

type apiItem struct {
	ASIN          string `json:"ASIN"`
	DetailPageURL string `json:"DetailPageURL"`
	ItemInfo      struct {
		Title struct {
			DisplayValue string `json:"DisplayValue"`
		} `json:"Title"`
		ByLineInfo struct {
			Brand struct {
				DisplayValue string `json:"DisplayValue"`
			} `json:"Brand"`
		} `json:"ByLineInfo"`
	} `json:"ItemInfo"`
	Offers struct {
		Listings []struct {
			Price struct {
				DisplayAmount string `json:"DisplayAmount"`
			} `json:"Price"`
			DeliveryInfo struct {
				IsPrimeEligible bool `json:"IsPrimeEligible"`
			} `json:"DeliveryInfo"`
		} `json:"Listings"`
	} `json:"Offers"`
	Images struct {
		Primary struct {
			Large struct {
				URL string `json:"URL"`
			} `json:"Large"`
		} `json:"Primary"`
	} `json:"Images"`
}

func parseItems(items []apiItem) []Product {
	products := make([]Product, 0, len(items))
	for _, item := range items {
		if item.ASIN == "" {
			continue
		}
		p := Product{
			ASIN:          item.ASIN,
			Title:         item.ItemInfo.Title.DisplayValue,
			DetailPageURL: item.DetailPageURL,
		}
		if url := item.Images.Primary.Large.URL; url != "" {
			p.ImageURL = &url
		}
		if brand := item.ItemInfo.ByLineInfo.Brand.DisplayValue; brand != "" {
			p.Brand = &brand
		}
		if len(item.Offers.Listings) > 0 {
			listing := item.Offers.Listings[0]
			if listing.Price.DisplayAmount != "" {
				price := listing.Price.DisplayAmount
				p.Price = &price
			}
			p.PrimeEligible = listing.DeliveryInfo.IsPrimeEligible
		}
		products = append(products, p)
	}
	return products
}
