package main

import (
	"net/http"

	"github.com/myrjola/spotfake/internal/game"
)

type resultsTemplateData struct {
	BaseTemplateData

	Score        int
	CorrectCount int
	TotalAnswers int
	BonusWon     bool
}

func (app *application) results(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	answers, ended := live.Results()
	if !ended {
		http.Redirect(w, r, "/play", http.StatusSeeOther)
		return
	}
	live.watchdog.Touch()

	snapshot := live.game.Snapshot()
	data := resultsTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Score:            snapshot.Score,
		TotalAnswers:     len(answers),
		BonusWon:         snapshot.BonusWon,
	}
	for _, answer := range answers {
		if answer.Correct {
			data.CorrectCount++
		}
	}

	app.render(w, r, http.StatusOK, "results", data)
}

type reviewedAnswer struct {
	game.Answer

	Item  itemView
	Found bool

	Explanation    string
	DetectionHints []string
	GeneratorLabel string
	Authentic      bool
}

type reviewTemplateData struct {
	BaseTemplateData

	Answers []reviewedAnswer
}

// review joins the answer log with the content library so the player can read
// the explanations and detection hints for everything they judged.
func (app *application) review(w http.ResponseWriter, r *http.Request) {
	live := app.hub.Get(app.gameID(r))
	if live == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	answers, ended := live.Results()
	if !ended {
		http.Redirect(w, r, "/play", http.StatusSeeOther)
		return
	}
	live.watchdog.Touch()

	items, err := app.store.All(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}

	data := reviewTemplateData{BaseTemplateData: app.newBaseTemplateData(r)}
	for _, answer := range answers {
		reviewed := reviewedAnswer{Answer: answer}
		if i, ok := byID[answer.ItemID]; ok {
			item := items[i]
			reviewed.Item = newItemView(item)
			reviewed.Found = true
			reviewed.Explanation = item.Explanation
			reviewed.DetectionHints = item.DetectionHints
			reviewed.GeneratorLabel = item.GeneratorLabel
			reviewed.Authentic = item.Authentic
		}
		data.Answers = append(data.Answers, reviewed)
	}

	app.render(w, r, http.StatusOK, "review", data)
}
