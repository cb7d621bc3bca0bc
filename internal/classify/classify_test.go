package classify

import (
	"testing"

	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft(title string, steps ...string) bdd.Draft {
	d := bdd.Draft{Title: title}
	kinds := []bdd.StepKind{bdd.StepGiven, bdd.StepWhen, bdd.StepThen}
	for i, s := range steps {
		d.Steps = append(d.Steps, bdd.Step{Kind: kinds[i%len(kinds)], Text: s})
	}
	return d
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		d    bdd.Draft
		want bdd.ScenarioType
	}{
		{
			name: "plain success",
			d:    draft("Successful checkout", "a cart with items", "the user pays", "the order is confirmed"),
			want: bdd.TypePositive,
		},
		{
			name: "negative in title",
			d:    draft("Login with INVALID password", "a registered user", "they submit", "access is refused"),
			want: bdd.TypeNegative,
		},
		{
			name: "negative in steps only",
			d:    draft("Payment attempt", "an expired card", "the user pays", "an error message is shown"),
			want: bdd.TypeNegative,
		},
		{
			name: "edge keyword",
			d:    draft("Cart at maximum size", "a cart with 100 items", "the user adds one more", "the item is queued"),
			want: bdd.TypeEdgeCase,
		},
		{
			name: "negative beats edge",
			d:    draft("Empty cart fails checkout", "an empty cart", "the user pays", "checkout is blocked"),
			want: bdd.TypeNegative,
		},
		{
			name: "portuguese negative",
			d:    draft("Senha incorreta", "um usuário cadastrado", "ele informa a senha", "o acesso é negado"),
			want: bdd.TypeNegative,
		},
		{
			name: "portuguese edge",
			d:    draft("Carrinho vazio", "um carrinho sem itens", "o usuário abre a página", "uma mensagem aparece"),
			want: bdd.TypeEdgeCase,
		},
		{
			name: "label without keyword stays positive",
			d: bdd.Draft{Title: "Customer checks out", TypeHint: "negative", Steps: []bdd.Step{
				{Kind: bdd.StepGiven, Text: "a cart"},
				{Kind: bdd.StepThen, Text: "order placed"},
			}},
			want: bdd.TypePositive,
		},
		{
			name: "edge label without keyword stays positive",
			d:    bdd.Draft{Title: "Slow network", TypeHint: "edge case", Steps: []bdd.Step{{Kind: bdd.StepGiven, Text: "3G"}}},
			want: bdd.TypePositive,
		},
		{
			name: "keyword overrides label",
			d:    bdd.Draft{Title: "Card rejected", TypeHint: "positive"},
			want: bdd.TypeNegative,
		},
		{
			name: "edge inside a longer word",
			d:    draft("Acknowledge order receipt", "a placed order", "the customer opens the email", "the customer sees a confirmation"),
			want: bdd.TypePositive,
		},
		{
			name: "knowledge base is not an edge case",
			d:    draft("Search the knowledge base", "published articles", "the user searches", "matching articles are listed"),
			want: bdd.TypePositive,
		},
		{
			name: "unlimited is not a limit",
			d:    draft("Unlimited plan downloads", "a subscriber on the unlimited plan", "they download a file", "the download starts"),
			want: bdd.TypePositive,
		},
		{
			name: "stems match inflected words",
			d:    draft("Transfers are limited per day", "a daily cap", "the user transfers again", "the transfer is queued"),
			want: bdd.TypeEdgeCase,
		},
		{
			name: "punctuation separates words",
			d:    draft("Checkout (failure)", "a cart", "payment/failed", "a retry is offered"),
			want: bdd.TypeNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.d))
		})
	}
}

func TestClassifyAll_PreservesInput(t *testing.T) {
	in := []bdd.Draft{
		draft("Happy path", "a", "b", "c").WithSource("product-owner", 0),
		draft("Invalid input", "a", "b", "c").WithSource("qa-engineer", 1),
	}

	out := ClassifyAll(in)
	require.Len(t, out, 2)
	assert.Equal(t, bdd.TypePositive, out[0].Type)
	assert.Equal(t, bdd.TypeNegative, out[1].Type)
	assert.Equal(t, "qa-engineer", out[1].Persona)
	assert.Equal(t, 1, out[1].Position)

	out[0].Steps[0].Text = "mutated"
	assert.Equal(t, "a", in[0].Steps[0].Text)

	counts := Count(out)
	assert.Equal(t, 1, counts[bdd.TypePositive])
	assert.Equal(t, 1, counts[bdd.TypeNegative])
	assert.Zero(t, counts[bdd.TypeEdgeCase])
}
