package v1

// Answer is the reply to a question.
type Answer struct {
	Answer  string `json:"answer"`
	Source  string `json:"source"`
	Success bool   `json:"success"`
}

// TeachResult reports the outcome of adding knowledge.
type TeachResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	TotalKnowledge int    `json:"total_knowledge"`
}

// KnowledgeDump is the full knowledge base of a server.
type KnowledgeDump struct {
	Company        string            `json:"company"`
	TotalResponses int               `json:"total_responses"`
	KnowledgeBase  map[string]string `json:"knowledge_base"`
}

// Health is the liveness payload.
type Health struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	APIConfigured bool   `json:"api_configured"`
}
