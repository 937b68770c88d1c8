// Package fallback answers chat requests without the reasoning engine.
// Everything here is pure: no I/O and no clock.
package fallback

import (
	"strings"

	"github.com/kailas-cloud/jarvis/internal/domain/recommendation"
)

// route maps a keyword set onto a canned list. Routes are checked in order.
type route struct {
	name     string
	keywords []string
	dishes   []recommendation.Recommendation
}

var routes = []route{
	{name: "pizza", keywords: []string{"pizza", "italian"}, dishes: pizzaDishes},
	{name: "sushi", keywords: []string{"sushi", "japanese", "roll"}, dishes: sushiDishes},
	{name: "indian", keywords: []string{"indian", "curry", "spicy"}, dishes: indianDishes},
}

// RouteGeneric is reported when no keyword set matched.
const RouteGeneric = "generic"

// Route returns the name of the list Respond would pick for message.
func Route(message string) string {
	r, ok := match(message)
	if !ok {
		return RouteGeneric
	}
	return r.name
}

func match(message string) (route, bool) {
	lower := strings.ToLower(message)
	for _, r := range routes {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r, true
			}
		}
	}
	return route{}, false
}

// Respond builds the fallback response for message. userName is used in the
// greeting; an empty name greets "there".
func Respond(message, userName string) recommendation.Response {
	dishes := popularDishes
	if r, ok := match(message); ok {
		dishes = r.dishes
	}

	name := recommendation.UserContext{Name: userName}.DisplayName()
	recs := make([]recommendation.Recommendation, len(dishes))
	for i, d := range dishes {
		recs[i] = d
		recs[i].Tags = append([]string(nil), d.Tags...)
	}

	resp := recommendation.Response{
		Message: "Hey " + name + "! Even though my AI chef is taking a quick break, " +
			"I've got some amazing recommendations for you! Here are some highly-rated dishes I think you'll love:",
		Recommendations: recs,
		ActionRequired:  recommendation.AddToCartAction(recs[0]),
		Fallback:        true,
		OriginalMessage: message,
	}
	resp.Finalize()
	return resp
}
