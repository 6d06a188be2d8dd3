package ai

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"

	domainerrors "github.com/focusflowapp/focusflow-server/internal/errors"
)

// Completion tuning for coaching analysis. 800 tokens comfortably fits
// the JSON payload; 0.7 keeps the advice varied without rambling.
const (
	analysisTemperature = 0.7
	analysisMaxTokens   = 800
)

// AzureAnalyzer generates session analysis via an Azure OpenAI deployment.
type AzureAnalyzer struct {
	client     *azopenai.Client
	deployment string
}

// NewAzureAnalyzer creates an analyzer backed by the given deployment.
func NewAzureAnalyzer(endpoint, apiKey, deployment string) (*AzureAnalyzer, error) {
	keyCredential := azcore.NewKeyCredential(apiKey)
	client, err := azopenai.NewClientWithKeyCredential(endpoint, keyCredential, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating Azure OpenAI client: %w", err)
	}
	return &AzureAnalyzer{
		client:     client,
		deployment: deployment,
	}, nil
}

// Analyze sends the coaching prompt and returns the raw completion text.
func (a *AzureAnalyzer) Analyze(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := a.client.GetChatCompletions(
		ctx,
		azopenai.ChatCompletionsOptions{
			DeploymentName: to.Ptr(a.deployment),
			Messages: []azopenai.ChatRequestMessageClassification{
				&azopenai.ChatRequestSystemMessage{
					Content: azopenai.NewChatRequestSystemMessageContent(systemPrompt),
				},
				&azopenai.ChatRequestUserMessage{
					Content: azopenai.NewChatRequestUserMessageContent(userPrompt),
				},
			},
			Temperature: to.Ptr[float32](analysisTemperature),
			MaxTokens:   to.Ptr[int32](analysisMaxTokens),
		},
		nil,
	)
	if err != nil {
		return "", domainerrors.Upstream("analysis provider request failed").WithCause(err)
	}

	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil && resp.Choices[0].Message.Content != nil {
		return *resp.Choices[0].Message.Content, nil
	}

	return "", nil
}
