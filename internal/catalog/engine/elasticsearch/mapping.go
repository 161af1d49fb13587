package elasticsearch

// DefaultIndexName is the index used for storefront products.
const DefaultIndexName = "storefront_products"

// buildIndexMapping returns the products index mapping. Name and category
// keep keyword subfields so substring queries can run as case-insensitive
// wildcards.
func buildIndexMapping() string {
	return `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":       { "type": "keyword" },
      "name":     { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "price":    { "type": "long" },
      "category": { "type": "text", "fields": { "keyword": { "type": "keyword", "ignore_above": 256 } } },
      "image":    { "type": "keyword", "index": false },
      "position": { "type": "long" }
    }
  }
}`
}
