package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/oliauusc/CSCI201-Group7/internal/core/domain"
	"github.com/oliauusc/CSCI201-Group7/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"name":         &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"lat":          &graphql.Field{Type: graphql.Float},
			"lng":          &graphql.Field{Type: graphql.Float},
			"rating":       &graphql.Field{Type: graphql.Float},
			"review_count": &graphql.Field{Type: graphql.Int},
			"tags":         &graphql.Field{Type: graphql.NewList(graphql.String)},
			"distance": &graphql.Field{
				Type:        graphql.Float,
				Description: "Miles from the query origin, when one was given",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if place, ok := sourcePlace(p.Source); ok && place.Distance != nil {
						return *place.Distance, nil
					}
					return nil, nil
				},
			},
			"directions_url": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if place, ok := sourcePlace(p.Source); ok {
						return place.DirectionsURL(), nil
					}
					return nil, nil
				},
			},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"place_id":      &graphql.Field{Type: graphql.String},
			"author":        &graphql.Field{Type: graphql.String},
			"rating":        &graphql.Field{Type: graphql.Int},
			"title":         &graphql.Field{Type: graphql.String},
			"body":          &graphql.Field{Type: graphql.String},
			"tags":          &graphql.Field{Type: graphql.NewList(graphql.String)},
			"helpful_count": &graphql.Field{Type: graphql.Int},
			"created_at": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if r, ok := p.Source.(domain.Review); ok {
						return r.CreatedAt.Format(time.RFC3339), nil
					}
					return nil, nil
				},
			},
		},
	})

	// origin reads optional lat/lng arguments, falling back to the campus origin.
	origin := func(args map[string]interface{}) domain.GeoPoint {
		lat, okLat := args["lat"].(float64)
		lng, okLng := args["lng"].(float64)
		if okLat && okLng {
			return domain.GeoPoint{Lat: lat, Lng: lng}
		}
		return deps.Origin
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "List places with their distance from a point",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"search":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"sort":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "distance"},
					"lat":      &graphql.ArgumentConfig{Type: graphql.Float},
					"lng":      &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					key, err := geospatial.ParseSortKey(p.Args["sort"].(string))
					if err != nil {
						return nil, err
					}
					filter := domain.PlaceFilter{
						Category: p.Args["category"].(string),
						Search:   p.Args["search"].(string),
					}
					return deps.Places.Nearby(p.Context, filter, origin(p.Args), key)
				},
			},
			"place": &graphql.Field{
				Type:        placeType,
				Description: "Get a place by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					place, err := deps.Places.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return *place, nil
				},
			},
			"nearestPlace": &graphql.Field{
				Type:        placeType,
				Description: "The place closest to a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.Float},
					"lng": &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					place, err := deps.Places.Nearest(p.Context, origin(p.Args))
					if err != nil {
						return nil, err
					}
					return *place, nil
				},
			},
			"topReviews": &graphql.Field{
				Type:        graphql.NewList(reviewType),
				Description: "A place's highest rated reviews",
				Args: graphql.FieldConfigArgument{
					"place_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Reviews.Top(p.Context, p.Args["place_id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func sourcePlace(src interface{}) (domain.Place, bool) {
	switch v := src.(type) {
	case domain.Place:
		return v, true
	case *domain.Place:
		if v != nil {
			return *v, true
		}
	}
	return domain.Place{}, false
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
