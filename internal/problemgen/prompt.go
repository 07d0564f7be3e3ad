package problemgen

import (
	"fmt"
	"strings"

	"github.com/estuda/estuda/internal/planner"
)

const basePrompt = `Você é um elaborador de questões de provas de residência médica e concursos.

Regras:
- Gere UMA questão inédita sobre o tema indicado, no estilo da banca indicada e no nível de dificuldade indicado.
- Use português do Brasil, linguagem técnica e enunciado autossuficiente.
- Não copie questões reais; crie casos clínicos e dados plausíveis.
- A explicação deve justificar o gabarito de forma objetiva.
- Responda APENAS com um objeto JSON, sem texto antes ou depois e sem blocos de código.`

var formatRules = map[Format]string{
	FormatMultipleChoice: `Formato: múltipla escolha.
- "options" deve ter 5 alternativas (A a E), sem as letras no texto, exatamente uma correta.
- "answer" é a letra da alternativa correta.
JSON: {"statement": "...", "options": ["...", "...", "...", "...", "..."], "answer": "A", "explanation": "..."}`,

	FormatTrueFalse: `Formato: certo ou errado.
- "statement" é uma única afirmação a ser julgada.
- "answer" é "true" se a afirmação estiver correta, "false" caso contrário.
JSON: {"statement": "...", "answer": "true", "explanation": "..."}`,

	FormatDiscursive: `Formato: discursiva.
- "answer" é a resposta esperada, com os pontos que a correção deve exigir.
JSON: {"statement": "...", "answer": "...", "explanation": "..."}`,
}

var difficultyLabels = map[string]string{
	"easy":   "fácil",
	"medium": "média",
	"hard":   "difícil",
}

// BuildPrompt renders the single prompt sent to the oracle for unit.
func BuildPrompt(unit planner.WorkUnit) string {
	var b strings.Builder

	b.WriteString(basePrompt)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Tema: %s\n", unit.TopicPath())
	fmt.Fprintf(&b, "Banca (estilo): %s\n", unit.SourceStyle)
	fmt.Fprintf(&b, "Dificuldade: %s\n", difficultyLabel(unit.Difficulty))
	b.WriteString("\n")

	if rules, ok := formatRules[Format(unit.Format)]; ok {
		b.WriteString(rules)
	}

	return b.String()
}

func difficultyLabel(d string) string {
	if l, ok := difficultyLabels[strings.ToLower(d)]; ok {
		return l
	}
	return d
}
