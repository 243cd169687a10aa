// Package guide implements the simulated AI tour guide: keyword-based intent
// classification with canned replies, a fake booking flow, and in-memory chat
// sessions.
package guide

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	// walletRequiredReply is returned for booking intents without a
	// connected wallet.
	walletRequiredReply = "To book a tour, you'll need to connect your Web3 wallet first. This allows me to create a secure, decentralized booking record for your trip."

	// bookingFailedReply is returned when the booking flow fails. The retry
	// instruction is advisory text only; no retry is performed.
	bookingFailedReply = "I'm sorry, there was an issue with processing your booking. Please ensure your wallet is connected to Polygon Mumbai network and try again."
)

// popularLocations is the fixed set of destinations a simulated booking can
// pick from.
var popularLocations = []string{
	"Borobudur Temple",
	"Prambanan Temple",
	"Komodo National Park",
	"Raja Ampat",
	"Mount Bromo",
}

// locationReplies maps a location keyword to its canned paragraph. Order
// matters: the first matching entry wins.
var locationReplies = []struct {
	keyword string
	reply   string
}{
	{
		keyword: "borobudur",
		reply:   "Borobudur is the world's largest Buddhist temple, built in the 9th century during the reign of the Sailendra Dynasty. Located in Central Java, this UNESCO World Heritage site features 2,672 relief panels and 504 Buddha statues. The best time to visit is at sunrise, when you can witness the magical light over the temple and surrounding landscape. Would you like to learn about nearby accommodations or tours?",
	},
	{
		keyword: "prambanan",
		reply:   "Prambanan is a magnificent Hindu temple compound dedicated to the Trimurti (Brahma, Vishnu, and Shiva), built in the 9th century. This UNESCO World Heritage site is characterized by its tall and pointed architecture, with a 47-meter-high central building. The complex contains over 200 temples and features beautiful relief carvings of the Ramayana epic. Would you like to know about transportation options to get there?",
	},
	{
		keyword: "bali",
		reply:   "Bali is Indonesia's most famous island, known for its beautiful beaches, vibrant culture, and spiritual atmosphere. Popular destinations include Ubud (cultural center), Kuta (surfing), Seminyak (luxury), and the Uluwatu Temple. Balinese Hinduism creates a unique cultural experience with daily offerings (canang sari) and spectacular ceremonies. Would you like specific recommendations for areas to stay or activities?",
	},
}

// topicReplies maps topic keywords to their canned paragraph. Any keyword in
// the set triggers the reply.
var topicReplies = []struct {
	keywords []string
	reply    string
}{
	{
		keywords: []string{"food", "cuisine", "eat"},
		reply:    "Indonesian cuisine is incredibly diverse! Some must-try dishes include Nasi Goreng (fried rice), Rendang (slow-cooked beef curry), Satay (meat skewers with peanut sauce), and Gado-gado (vegetable salad with peanut sauce). Each region has its specialties - for example, Padang for spicy dishes, Yogyakarta for Gudeg (young jackfruit stew), and Bali for Babi Guling (suckling pig). Would you like recommendations for a specific region?",
	},
	{
		keywords: []string{"transport", "getting around"},
		reply:    "In Indonesia's major cities like Jakarta, you can use ride-hailing apps (Gojek, Grab), taxis, or public transit. Between cities, domestic flights are popular due to the archipelago nature. On islands like Bali, renting a scooter is common but requires caution. For a cultural experience, try becaks (cycle rickshaws) in Yogyakarta or bajaj (three-wheeled taxis) in Jakarta. Would you like specific transportation advice for a particular destination?",
	},
}

// fallbackReplies are general-knowledge paragraphs used when no keyword
// matches. One is picked uniformly at random.
var fallbackReplies = []string{
	"Indonesia consists of over 17,000 islands, with Java, Sumatra, Borneo (Kalimantan), Sulawesi, and Papua being the largest. Each island offers unique cultural experiences and natural wonders. Is there a particular island you're interested in exploring?",
	"Indonesian culture is incredibly diverse with over 300 ethnic groups. The largest is Javanese (40% of population), followed by Sundanese, Batak, and Madurese. Each group has its own language, customs, and traditions. Would you like to learn about a specific cultural aspect?",
	"The best time to visit Indonesia depends on where you're going. Generally, the dry season (May to September) is ideal for most destinations. However, some eastern areas like Raja Ampat are better during the wet season. What region are you planning to visit?",
	"For first-time visitors to Indonesia, I recommend starting in Bali for beaches and culture, then visiting Yogyakarta for historical temples, and perhaps Komodo Island for wildlife. How long will your trip be?",
}

// A Responder turns free-text user input into a canned guide reply. Matching
// is case-insensitive substring matching over the full input, first match
// wins, with booking intent taking precedence over everything else.
type Responder struct {
	Logger *slog.Logger

	// BookingDelay simulates the latency of the (not actually performed)
	// on-chain booking call. Zero means no delay.
	BookingDelay time.Duration
}

// Reply produces the guide's reply to the given input. The only error it
// returns is context cancellation during the simulated booking delay; every
// other condition, including a booking failure, resolves to reply text.
func (r *Responder) Reply(ctx context.Context, input string, walletConnected bool) (string, error) {
	lower := strings.ToLower(input)

	if strings.Contains(lower, "book") || strings.Contains(lower, "reserve") {
		if !walletConnected {
			return walletRequiredReply, nil
		}
		reply, err := r.createBooking(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			r.Logger.Error("Booking failed", "error", err.Error())
			return bookingFailedReply, nil
		}
		return reply, nil
	}

	for _, loc := range locationReplies {
		if strings.Contains(lower, loc.keyword) {
			return loc.reply, nil
		}
	}

	for _, topic := range topicReplies {
		for _, kw := range topic.keywords {
			if strings.Contains(lower, kw) {
				return topic.reply, nil
			}
		}
	}

	return fallbackReplies[rand.IntN(len(fallbackReplies))], nil
}

// A Booking is the synthesized result of a simulated booking. It is rendered
// into confirmation text and never persisted anywhere.
type Booking struct {
	Destination string
	Date        int64 // epoch seconds
}

// createBooking simulates a smart contract booking call: it picks a random
// destination, targets a date 30 days out, waits out the simulated latency
// and resolves with confirmation text. Every call yields a fresh random
// destination; there is no idempotency key and no deduplication. A real
// ledger-backed implementation must gain one before retries become safe.
func (r *Responder) createBooking(ctx context.Context) (string, error) {
	b := Booking{
		Destination: popularLocations[rand.IntN(len(popularLocations))],
		Date:        time.Now().Add(30 * 24 * time.Hour).Unix(),
	}

	// The real contract call would go here, e.g.:
	//   tx := tourGuide.CreateBooking(opts, b.Destination, big.NewInt(b.Date))
	// The prototype only synthesizes the confirmation.
	if err := sleep(ctx, r.BookingDelay); err != nil {
		return "", err
	}

	return fmt.Sprintf("Great! I've created a blockchain-based booking for you to visit %[1]s in 30 days. This booking is now recorded on the Polygon blockchain and linked to your wallet address. You'll receive an NFT confirmation in your wallet shortly. Would you like me to recommend some activities or places to stay near %[1]s?", b.Destination), nil
}

// sleep waits for d or until the context is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
