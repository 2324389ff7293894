// Package contracts holds sample responses of the folio backend API.
//
// Every response is wrapped in an envelope of the form
// {"data": <payload>, "message": "..."}. Client tests serve these bodies
// so that parser changes are checked against one agreed shape.
package contracts

// TopCursorContract is the body of GET /api/portfolios/last-id.
const TopCursorContract = `{
	"data": 25,
	"message": "ok"
}`

// PortfolioPageContract is the body of GET /api/portfolios and
// GET /api/portfolios/filter.
const PortfolioPageContract = `{
	"data": [
		{
			"id": 25,
			"title": "Realtime chat in Go",
			"nickname": "gopher",
			"category": "Develop",
			"filter": "Backend",
			"thumbnailUrl": "https://cdn.example.com/thumb/25.png",
			"views": 120,
			"likes": 8,
			"createdAt": "2024-05-01T12:30:00"
		},
		{
			"id": 24,
			"title": "Brand refresh",
			"nickname": "kim",
			"category": "Design",
			"filter": "Branding",
			"thumbnailUrl": "https://cdn.example.com/thumb/24.png",
			"views": 40,
			"likes": 3,
			"createdAt": "2024-04-30T09:00:00Z"
		}
	],
	"message": "ok"
}`

// SearchContract is the body of GET /api/portfolios/search.
const SearchContract = `{
	"data": {
		"content": [
			{
				"id": 7,
				"title": "Studio portraits",
				"nickname": "lee",
				"category": "Photographer",
				"filter": "Portrait",
				"views": 10,
				"likes": 1,
				"createdAt": "2024-03-05T10:00:00"
			}
		],
		"page": 0,
		"size": 12,
		"totalPages": 1,
		"totalElements": 1
	},
	"message": "ok"
}`

// DetailContract is the body of GET /api/portfolios/{id}.
const DetailContract = `{
	"data": {
		"id": 25,
		"userId": 3,
		"title": "Realtime chat in Go",
		"nickname": "gopher",
		"category": "Develop",
		"filter": "Backend",
		"thumbnailUrl": "https://cdn.example.com/thumb/25.png",
		"views": 120,
		"likes": 8,
		"createdAt": "2024-05-01T12:30:00",
		"introduction": "A chat server with websockets.",
		"skills": ["Go", "Redis"],
		"links": ["https://github.com/gopher/chat"]
	},
	"message": "ok"
}`

// UserContract is the body of GET /api/users/{id}.
const UserContract = `{
	"data": {
		"id": 3,
		"email": "gopher@example.com",
		"nickname": "gopher",
		"profileImage": "https://cdn.example.com/profile/3.png",
		"introduction": "Backend developer"
	},
	"message": "ok"
}`

// ErrorContract is the body of any non-2xx response.
const ErrorContract = `{
	"data": null,
	"message": "portfolio not found"
}`

// All returns every contract by name.
func All() map[string]string {
	return map[string]string{
		"top cursor": TopCursorContract,
		"page":       PortfolioPageContract,
		"search":     SearchContract,
		"detail":     DetailContract,
		"user":       UserContract,
		"error":      ErrorContract,
	}
}
