// Demo program: annotates a built-in news article submitted as text/xml
// and prints its topics, entities and social tags, then the raw response.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ppiankov/calais/internal/calais"
	"github.com/ppiankov/calais/internal/logger"
	"github.com/ppiankov/calais/internal/model"
)

// source: https://www.reuters.com/article/us-france-usa/as-macron-heads-to-u-s-strong-relationship-with-trump-under-test-idUSKBN1HQ0SE
var article = calais.Document{
	Title: "As Macron heads to U.S., 'strong relationship' with Trump under test",
	Abstract: "PARIS (Reuters) - When France’s ambassador to Washington told American officials last July " +
		"that he was heading to Paris and would shortly see President Emmanuel Macron, one of them " +
		"handed him a copy of the New York Times.",
	Body: `In it, he read the words “Yes, Emmanuel. It’s true, I love You” written in highlighter next to an article about the French leader’s good relationship with U.S. President Donald Trump.
Whether Trump scribbled the words himself is unclear, but coming just two weeks after he had been hosted in great pomp at the Bastille Day military parade in Paris, it showed just how strong Franco-American ties were.
As he arrives in Washington on Monday for a three-day state visit, that good rapport will be tested as Macron tries to sway Trump on key issues from Syria to Iran and trade after a year spent investing a lot of political capital with few returns.
While he has delivered on promises of change at home and is pushing his views in Europe, the world stage is proving tougher terrain. Like others before him, Macron has found predicting Trump a challenge.
Macron has spoken to Trump by phone in the last year more than with any other leader, including German Chancellor Angela Merkel, arguably becoming Trump’s bridge to Europe.
Besides, diplomats say that France’s military role fighting Islamist militants in West Africa and Syria has opened doors in Washington.

TESTS ON TRADE, IRAN

Trump has given the European Union until May 1 to negotiate permanent exemptions from steel and aluminum tariffs and France, Britain and Germany until May 12 to “fix” the Iran nuclear deal with world powers.
Macron’s desire to keep the 2015 Iran nuclear deal, while offering to be tough on Tehran’s ballistic missile program and regional activities has yet to assuage Trump.

MERKEL COORDINATION

Macron’s visit will be followed on April 27 by Merkel, whose relationship with Trump has been markedly more tense.
The French and German leaders meet in Berlin on Thursday to ensure they are on same page on Iran and trade ahead of their trips, a presidential source said.
U.S. companies overtook German ones as the top corporate investors in the French economy last year, with U.S. investments up 26 percent.`,
}

func main() {
	_ = godotenv.Load()
	log := logger.New(logger.Options{Verbose: os.Getenv("CALAIS_VERBOSE") != ""})

	oc, err := calais.New(os.Getenv("CALAIS_TOKEN"),
		calais.WithContentType("text/xml"),
		calais.WithLogger(log),
	)
	if err != nil {
		log.Fatal("create client", "err", err)
	}

	document, err := article.Render("text/xml")
	if err != nil {
		log.Fatal("render document", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entities, err := oc.GetEntities(ctx, document)
	if err != nil {
		log.Fatal("annotate", "err", err)
	}

	// the first call stored every collection; no document needed
	topics, _ := oc.GetTopics(ctx, "")
	socialTags, _ := oc.GetSocialTags(ctx, "")

	if len(topics) > 0 {
		fmt.Println("TOPICS")
		for _, t := range model.SortedTopics(topics) {
			fmt.Printf("%s (%g)\n", t.Name, t.Score)
		}
	}

	if len(entities) > 0 {
		fmt.Println("ENTITIES")
		for _, group := range model.GroupEntities(entities) {
			fmt.Println(group.Type)
			for _, e := range group.Entities {
				fmt.Printf("\t%s (%g)\n", e.Name, e.Relevance)
			}
		}
	}

	if len(socialTags) > 0 {
		fmt.Println("SOCIAL TAGS")
		for _, t := range model.SortedSocialTags(socialTags) {
			fmt.Printf("%s (%g)\n", t.Name, t.Importance)
		}
	}

	fmt.Println(oc.LastAPIResponse())
}
