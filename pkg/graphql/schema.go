// Package graphql exposes a read-only GraphQL view of the graph store for
// ad-hoc inspection. Mutation goes through the upload and rebuild endpoints
// only.
package graphql

import (
	"fmt"
	"strconv"

	"github.com/dd0wney/cluso-opsgraph/pkg/storage"
	"github.com/graphql-go/graphql"
)

// GenerateSchema builds the query schema over the storage layer.
func GenerateSchema(store *storage.GraphStore) (graphql.Schema, error) {
	neighborType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Neighbor",
		Fields: graphql.Fields{
			"relation": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if nb, ok := p.Source.(storage.Neighbor); ok {
						return string(nb.Edge.Type), nil
					}
					return nil, nil
				},
			},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if nb, ok := p.Source.(storage.Neighbor); ok {
						return nb.Node.Label, nil
					}
					return nil, nil
				},
			},
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if nb, ok := p.Source.(storage.Neighbor); ok {
						return string(nb.Node.Type), nil
					}
					return nil, nil
				},
			},
		},
	})

	nodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.NewNonNull(graphql.ID),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if node, ok := p.Source.(*storage.Node); ok {
						return strconv.FormatUint(node.ID, 10), nil
					}
					return nil, nil
				},
			},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if node, ok := p.Source.(*storage.Node); ok {
						return node.Label, nil
					}
					return nil, nil
				},
			},
			"type": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if node, ok := p.Source.(*storage.Node); ok {
						return string(node.Type), nil
					}
					return nil, nil
				},
			},
			"neighbors": &graphql.Field{
				Type: graphql.NewList(neighborType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					node, ok := p.Source.(*storage.Node)
					if !ok {
						return nil, nil
					}
					return store.Neighbors(node.ID, storage.DirectionBoth, nil)
				},
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"nodes": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(storage.Statistics); ok {
						return int(s.Nodes), nil
					}
					return nil, nil
				},
			},
			"edges": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(storage.Statistics); ok {
						return int(s.Edges), nil
					}
					return nil, nil
				},
			},
			"generation": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if s, ok := p.Source.(storage.Statistics); ok {
						return s.GenerationID, nil
					}
					return nil, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return "ok", nil
				},
			},
			"stats": &graphql.Field{
				Type: statsType,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return store.Stats()
				},
			},
			"node": &graphql.Field{
				Type: nodeType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.ID),
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					idStr, ok := p.Args["id"].(string)
					if !ok {
						return nil, fmt.Errorf("id argument is required")
					}
					id, err := strconv.ParseUint(idStr, 10, 64)
					if err != nil {
						return nil, fmt.Errorf("invalid node id %q", idStr)
					}
					return store.GetNode(id)
				},
			},
			"nodesByType": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"type": &graphql.ArgumentConfig{
						Type: graphql.NewNonNull(graphql.String),
					},
					"filter": &graphql.ArgumentConfig{
						Type: graphql.String,
					},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					typeStr, ok := p.Args["type"].(string)
					if !ok {
						return nil, fmt.Errorf("type argument is required")
					}
					entityType, err := storage.ParseEntityType(typeStr)
					if err != nil {
						return nil, err
					}
					filter, _ := p.Args["filter"].(string)
					return store.FindByType(entityType, filter)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to create schema: %w", err)
	}
	return schema, nil
}

// ExecuteQuery runs a query against the schema.
func ExecuteQuery(query string, schema graphql.Schema) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: query,
	})
}

// ExecuteQueryWithVariables runs a query with variable bindings.
func ExecuteQueryWithVariables(query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}
