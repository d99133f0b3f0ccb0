package api

import (
	"github.com/annolab/curator/internal/config"
	"github.com/annolab/curator/pkg/openapi"
)

// buildSpec assembles the OpenAPI document for the service routes.
func buildSpec(cfg *config.Config) *openapi.Spec {
	spec := openapi.NewSpec(cfg.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: []any{"annotate", "aggregate", "merge"}},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
				"active":       {Type: "boolean"},
			},
		},
		"PromptCommand": {
			Type:     "object",
			Required: []string{"name", "stage", "instructions"},
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"stage":        {Type: "string", Enum: []any{"annotate", "aggregate", "merge"}},
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
			},
		},
		"AnnotateCommand": {
			Type:     "object",
			Required: []string{"task_id", "examples", "annotation_guideline"},
			Properties: map[string]*openapi.Schema{
				"task_id":              {Type: "string"},
				"examples":             {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"annotation_guideline": {Type: "string"},
				"reannotate_round":     {Type: "integer", Default: 0},
			},
		},
		"AnnotationRecord": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":                    {Type: "string", Format: "uuid"},
				"task_id":               {Type: "string"},
				"round":                 {Type: "integer"},
				"uid":                   {Type: "string", Format: "uuid"},
				"text_to_annotate":      {Type: "string"},
				"cluster":               {Type: "integer"},
				"pca_x":                 {Type: "number"},
				"pca_y":                 {Type: "number"},
				"raw_annotations":       {Type: "string"},
				"analyses":              {Type: "string"},
				"annotation":            {Type: "string"},
				"confidence":            {Type: "number"},
				"new_edge_case":         {Type: "boolean"},
				"guideline_improvement": {Type: "string"},
				"salvaged":              {Type: "boolean"},
				"edge_case_id":          {Type: "integer"},
				"edge_case_pca_x":       {Type: "number"},
				"edge_case_pca_y":       {Type: "number"},
			},
		},
		"AnnotateResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"annotations": {
					Type:  "array",
					Items: openapi.SchemaRef("AnnotationRecord"),
				},
				"cost": {Type: "number", Description: "Total provider cost in dollars"},
			},
		},
		"SynthesizeCommand": {
			Type:     "object",
			Required: []string{"task_id", "annotation_result", "annotation_guideline"},
			Properties: map[string]*openapi.Schema{
				"task_id": {Type: "string"},
				"annotation_result": {
					Type:  "array",
					Items: openapi.SchemaRef("AnnotationRecord"),
				},
				"annotation_guideline": {Type: "string"},
				"round":                {Type: "integer", Default: 0},
			},
		},
		"SynthesizeResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"suggestions": {
					Type:        "object",
					Description: "Edge case descriptions keyed by edge_case_N identifiers",
				},
				"improvement_clusters": {
					Type:  "array",
					Items: openapi.SchemaRef("AnnotationRecord"),
				},
				"dropped_edge_cases": {Type: "integer"},
				"cost":               {Type: "number"},
			},
		},
		"Category": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"task_id":      {Type: "string"},
				"round":        {Type: "integer"},
				"edge_case_id": {Type: "integer"},
				"description":  {Type: "string"},
				"member_uids": {
					Type:  "array",
					Items: &openapi.Schema{Type: "string", Format: "uuid"},
				},
			},
		},
	})

	addPromptPaths(spec)
	addAnnotationPaths(spec)
	addSynthesisPaths(spec)
	addArtifactPaths(spec)

	return spec
}

func addPromptPaths(spec *openapi.Spec) {
	tags := []string{"prompts"}

	spec.Paths["/prompts"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List prompts",
			Tags:    tags,
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("stage", "string", "Filter by pipeline stage", false),
				openapi.QueryParam("name", "string", "Filter by name (contains)", false),
				openapi.QueryParam("active", "boolean", "Filter by active state", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated prompts", "Prompt"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Create prompt",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Created prompt", "Prompt"),
				400: openapi.ResponseRef("BadRequest"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/prompts/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find prompt",
			Tags:       tags,
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Put: &openapi.Operation{
			Summary:     "Update prompt",
			Tags:        tags,
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			RequestBody: openapi.RequestBodyJSON("PromptCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Updated prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete prompt",
			Tags:       tags,
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/prompts/{id}/activate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Activate prompt",
			Description: "Marks the prompt active for its stage, deactivating any other.",
			Tags:        tags,
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Activated prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/prompts/{id}/deactivate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:    "Deactivate prompt",
			Tags:       tags,
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Prompt identifier")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Deactivated prompt", "Prompt"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/prompts/{stage}/instructions"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:     "Stage instructions",
			Description: "Returns the active instructions for a stage, falling back to built-in defaults.",
			Tags:        tags,
			Parameters: []*openapi.Parameter{
				{
					Name:     "stage",
					In:       "path",
					Required: true,
					Schema:   &openapi.Schema{Type: "string", Enum: []any{"annotate", "aggregate", "merge"}},
				},
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Stage instructions"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/prompts/stages"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List pipeline stages",
			Tags:    tags,
			Responses: map[int]*openapi.Response{
				200: {Description: "Stage names"},
			},
		},
	}

	spec.Paths["/prompts/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search prompts",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated prompts", "Prompt"),
			},
		},
	}
}

func addAnnotationPaths(spec *openapi.Spec) {
	tags := []string{"annotations"}

	spec.Paths["/annotations"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List annotation records",
			Tags:    tags,
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("task_id", "string", "Filter by task", false),
				openapi.QueryParam("round", "integer", "Filter by annotation round", false),
				openapi.QueryParam("label", "string", "Filter by assigned label", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated annotation records", "AnnotationRecord"),
			},
		},
		Post: &openapi.Operation{
			Summary:     "Annotate a batch of examples",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("AnnotateCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Annotation results", "AnnotateResult"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/annotations/one"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Annotate a single example",
			Description: "Requires a previously fitted topical model for the task.",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("AnnotateCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Annotation result", "AnnotateResult"),
				400: openapi.ResponseRef("BadRequest"),
				409: openapi.ResponseRef("Conflict"),
			},
		},
	}

	spec.Paths["/annotations/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search annotation records",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated annotation records", "AnnotationRecord"),
			},
		},
	}
}

func addSynthesisPaths(spec *openapi.Spec) {
	tags := []string{"synthesis"}

	spec.Paths["/synthesis"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Synthesize edge case categories",
			Description: "Clusters proposed edge case rules and derives category suggestions.",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("SynthesizeCommand", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Synthesis results", "SynthesizeResult"),
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/synthesis/categories"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List edge case categories",
			Tags:    tags,
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("task_id", "string", "Filter by task", false),
				openapi.QueryParam("round", "integer", "Filter by annotation round", false),
			},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated categories", "Category"),
			},
		},
	}

	spec.Paths["/synthesis/categories/search"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Search edge case categories",
			Tags:        tags,
			RequestBody: openapi.RequestBodyJSON("PageRequest", true),
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Paginated categories", "Category"),
			},
		},
	}
}

func addArtifactPaths(spec *openapi.Spec) {
	tags := []string{"artifacts"}

	keyParam := &openapi.Parameter{
		Name:        "key",
		In:          "path",
		Required:    true,
		Description: "Blob storage key",
		Schema:      &openapi.Schema{Type: "string"},
	}

	spec.Paths["/artifacts/{key}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Download a run snapshot",
			Tags:       tags,
			Parameters: []*openapi.Parameter{keyParam},
			Responses: map[int]*openapi.Response{
				200: {Description: "Snapshot content"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a run snapshot",
			Tags:       tags,
			Parameters: []*openapi.Parameter{keyParam},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}
}
