// Package graphql exposes a read-only query surface over projects,
// topology nodes and attack chains
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/store"
	"github.com/redgraph/chainmap/pkg/topology"
)

// NewSchema builds the query schema over the given stores
func NewSchema(chains store.ChainStore, inventory *topology.Inventory) (graphql.Schema, error) {
	nodeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "TopologyNode",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.Node).Ref.ID, nil
				},
			},
			"kind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(*topology.Node).Ref.Kind), nil
				},
			},
			"label": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.Node).Label, nil
				},
			},
			"hostId": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*topology.Node).HostID, nil
				},
			},
		},
	})

	stepType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChainStep",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).ID, nil
				},
			},
			"entityId": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).EntityRef.ID, nil
				},
			},
			"entityKind": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return string(p.Source.(*chain.Step).EntityRef.Kind), nil
				},
			},
			"sequenceOrder": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).SequenceOrder, nil
				},
			},
			"methodNotes": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).MethodNotes, nil
				},
			},
			"isBranchPoint": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).IsBranchPoint, nil
				},
			},
			"branchDescription": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Step).BranchDescription, nil
				},
			},
		},
	})

	chainType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Chain",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).ID, nil
				},
			},
			"projectId": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).ProjectID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).Name, nil
				},
			},
			"description": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).Description, nil
				},
			},
			"color": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).Color, nil
				},
			},
			"steps": &graphql.Field{
				Type: graphql.NewList(stepType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(*chain.Draft).Steps, nil
				},
			},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ChainSummary",
		Fields: graphql.Fields{
			"id": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(chain.Summary).ID, nil
				},
			},
			"name": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(chain.Summary).Name, nil
				},
			},
			"color": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(chain.Summary).Color, nil
				},
			},
			"stepCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return p.Source.(chain.Summary).StepCount, nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"health": &graphql.Field{
				Type: graphql.String,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return "ok", nil
				},
			},
			"topology": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"projectId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					projectID, _ := p.Args["projectId"].(string)
					return inventory.ProjectNodes(projectID), nil
				},
			},
			"chain": &graphql.Field{
				Type: chainType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					return chains.Get(p.Context, id)
				},
			},
			"chains": &graphql.Field{
				Type: graphql.NewList(summaryType),
				Args: graphql.FieldConfigArgument{
					"projectId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					projectID, _ := p.Args["projectId"].(string)
					return chains.ListByProject(p.Context, projectID)
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("failed to build schema: %w", err)
	}
	return schema, nil
}
