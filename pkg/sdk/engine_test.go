package jarvis

import "github.com/kailas-cloud/jarvis/internal/domain"

func domainRequest(stage string) domain.ReasoningRequest {
	return domain.ReasoningRequest{Stage: stage, Role: "tester", Instruction: "do it"}
}
