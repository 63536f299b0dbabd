package gateway

import "net/http"

// handleAgentJSON serves the A2A discovery document. Pure metadata.
func (s *Server) handleAgentJSON(w http.ResponseWriter, r *http.Request) {
	card := map[string]any{
		"name":        "Asynchronous Text Translation Agent",
		"description": "An agent that translates text asynchronously through a durable work queue.",
		"url":         s.publicURL + "/",
		"version":     "1.0.0",
		"capabilities": map[string]any{
			"streaming":         false,
			"pushNotifications": false,
		},
		"defaultInputModes":  []string{"text/plain"},
		"defaultOutputModes": []string{"text/plain"},
		"skills": []map[string]any{
			{
				"id":          "translate_text",
				"name":        "Translate text",
				"description": "Translates a text document into a target language.",
				"tags":        []string{"translation", "text"},
				"examples": []string{
					`Send a message with a text part and a data part {"target_language": "es"}.`,
				},
			},
		},
		"supportedMethods": []string{"message/send", "tasks/get", "tasks/cancel"},
	}
	writeJSON(w, http.StatusOK, card)
}

// handleAgentCard serves the legacy capability descriptor.
func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	card := map[string]any{
		"agent_id":    "translation-agent-v1",
		"name":        "Asynchronous Text Translation Agent",
		"description": "An agent that receives text translation tasks asynchronously and serves results once a worker completes them.",
		"skills": []map[string]any{
			{
				"skill_name":      "translate_text",
				"endpoint":        s.publicURL + "/execute_task",
				"status_endpoint": s.publicURL + "/task_status",
				"input_format": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"envelope": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"task_id":         map[string]any{"type": "string"},
								"target_language": map[string]any{"type": "string", "example": "el"},
							},
						},
						"parts": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"document_content": map[string]any{"type": "string"},
							},
						},
					},
				},
				"output_format": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status": map[string]any{
							"type": "string",
							"enum": []string{"pending", "completed", "failed"},
						},
						"artifact_content": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
	writeJSON(w, http.StatusOK, card)
}
