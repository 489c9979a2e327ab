package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/trackmap/internal/core/domain"
	"github.com/samirrijal/trackmap/internal/pkg/polyline"
)

// buildSchema creates the GraphQL schema wired to the render service.
// Field names follow the JSON tags so the default resolver finds them.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	boundsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoBounds",
		Fields: graphql.Fields{
			"min_lat": &graphql.Field{Type: graphql.Float},
			"max_lat": &graphql.Field{Type: graphql.Float},
			"min_lng": &graphql.Field{Type: graphql.Float},
			"max_lng": &graphql.Field{Type: graphql.Float},
		},
	})

	tileType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Tile",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Int},
			"y": &graphql.Field{Type: graphql.Int},
			"z": &graphql.Field{Type: graphql.Int},
		},
	})

	stagesType := graphql.NewObject(graphql.ObjectConfig{
		Name: "BoundsStages",
		Fields: graphql.Fields{
			"bound0": &graphql.Field{Type: boundsType, Description: "Tight box around the points"},
			"bound1": &graphql.Field{Type: boundsType, Description: "Buffered box"},
			"bound2": &graphql.Field{Type: boundsType, Description: "Aspect-corrected box"},
			"bound3": &graphql.Field{Type: boundsType, Description: "Expanded target box"},
		},
	})

	gridType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TileGrid",
		Fields: graphql.Fields{
			"tiles":         &graphql.Field{Type: graphql.NewList(tileType)},
			"target_bounds": &graphql.Field{Type: boundsType},
			"tile_bounds":   &graphql.Field{Type: boundsType},
			"zoom":          &graphql.Field{Type: graphql.Int},
			"min_x":         &graphql.Field{Type: graphql.Int},
			"min_y":         &graphql.Field{Type: graphql.Int},
			"cols":          &graphql.Field{Type: graphql.Int},
			"rows":          &graphql.Field{Type: graphql.Int},
		},
	})

	planType := graphql.NewObject(graphql.ObjectConfig{
		Name: "RenderPlan",
		Fields: graphql.Fields{
			"stages":    &graphql.Field{Type: stagesType},
			"zoom":      &graphql.Field{Type: graphql.Int},
			"grid":      &graphql.Field{Type: gridType},
			"tile_size": &graphql.Field{Type: graphql.Int},
		},
	})

	renderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Render",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"job_id":        &graphql.Field{Type: graphql.String},
			"polyline":      &graphql.Field{Type: graphql.String},
			"point_count":   &graphql.Field{Type: graphql.Int},
			"length_meters": &graphql.Field{Type: graphql.Float},
			"track_width":   &graphql.Field{Type: graphql.Int},
			"track_height":  &graphql.Field{Type: graphql.Int},
			"final_width":   &graphql.Field{Type: graphql.Int},
			"final_height":  &graphql.Field{Type: graphql.Int},
			"zoom":          &graphql.Field{Type: graphql.Int},
			"retina":        &graphql.Field{Type: graphql.Boolean},
			"tile_count":    &graphql.Field{Type: graphql.Int},
			"placeholders":  &graphql.Field{Type: graphql.Int},
			"bounds":        &graphql.Field{Type: boundsType},
			"image_bytes":   &graphql.Field{Type: graphql.Int},
			"duration_ms":   &graphql.Field{Type: graphql.Int},
			"created_at":    &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"plan": &graphql.Field{
				Type:        planType,
				Description: "Compute bounds, zoom and tile grid for an encoded polyline",
				Args: graphql.FieldConfigArgument{
					"polyline": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"width":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"height":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"up":       &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"down":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"left":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"right":    &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"retina":   &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					pts, err := polyline.Decode(p.Args["polyline"].(string))
					if err != nil {
						return nil, err
					}
					req := domain.RenderRequest{
						Points: pts,
						TrackRegion: domain.TrackRegion{
							Width:  p.Args["width"].(int),
							Height: p.Args["height"].(int),
						},
						Expansion: domain.ExpansionRegion{
							Up:    p.Args["up"].(float64),
							Down:  p.Args["down"].(float64),
							Left:  p.Args["left"].(float64),
							Right: p.Args["right"].(float64),
						},
						Retina: p.Args["retina"].(bool),
					}
					return deps.Renders.Plan(p.Context, req)
				},
			},
			"renders": &graphql.Field{
				Type:        graphql.NewList(renderType),
				Description: "List stored renders, newest first",
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: defaultPageLimit},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					recs, _, err := deps.Renders.List(p.Context, p.Args["limit"].(int), p.Args["offset"].(int))
					return recs, err
				},
			},
			"render": &graphql.Field{
				Type:        renderType,
				Description: "Get a stored render by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Renders.Get(p.Context, p.Args["id"].(string))
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
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
