package extractor

import (
	"reflect"
	"testing"

	"faredrop/internal/trip"

	_ "faredrop/internal/parsers"
)

const deltaManagePage = `<html><head>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s91?v20=LGA&amp;v21=TQO&amp;v22=03/31/2026&amp;v23=04/07/2026&amp;v24=GO7RLB"></script>
</head><body>
<h1>Manage my trip</h1>
<div>DL 342 LGA - TQO</div>
<div>Departs Mar 31, 2026 7:15 AM</div>
<div>Arrives Mar 31, 2026 11:40 AM</div>
<div>DL 89 TQO - LGA</div>
<div>Departs Apr 7, 2026 1:30 PM</div>
</body></html>`

func TestExtract_ManageTripPage(t *testing.T) {
	doc := &trip.Document{TripID: "trip-1", Airline: "DL", Kind: trip.KindHTML, Body: deltaManagePage}

	record, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}

	if record.Confidence != trip.ConfidenceExactFlight {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceExactFlight)
	}
	if record.RecordLocator != "GO7RLB" {
		t.Errorf("RecordLocator = %q", record.RecordLocator)
	}
	if record.OriginIATA != "LGA" || record.DestinationIATA != "TQO" {
		t.Errorf("route = %s-%s, want LGA-TQO", record.OriginIATA, record.DestinationIATA)
	}
	if record.DepartureDate != "2026-03-31" || record.ReturnDate != "2026-04-07" {
		t.Errorf("dates = %s / %s", record.DepartureDate, record.ReturnDate)
	}
	if len(record.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(record.Segments))
	}
	if record.Segments[0].FlightNumber != "342" || record.Segments[1].FlightNumber != "89" {
		t.Errorf("segments = %+v", record.Segments)
	}
}

func TestExtract_BeaconOnlyIsRouteEstimate(t *testing.T) {
	page := `<script src="https://smetrics.united.com/b/ss/u1?v20=SFO&amp;v21=ORD&amp;v22=05/02/2026"></script>`
	doc := &trip.Document{TripID: "trip-2", Kind: trip.KindHTML, Body: page}

	record, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceRouteEstimate {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceRouteEstimate)
	}
	if record.Airline != "UA" {
		t.Errorf("Airline = %q, want UA", record.Airline)
	}
	if record.OriginIATA != "SFO" || record.DestinationIATA != "ORD" {
		t.Errorf("route = %s-%s", record.OriginIATA, record.DestinationIATA)
	}
}

func TestExtract_FlightNumberTextUpgradesToExactFlight(t *testing.T) {
	// No leg line with an airport pair, just the flight number in running
	// text. That still identifies the booked flight exactly.
	page := `<html><head>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s91?v20=LGA&amp;v21=TQO&amp;v22=03/31/2026&amp;v23=03/31/2026&amp;v24=GO7RLB"></script>
</head><body>
<p>Your flight DL342 is confirmed.</p>
</body></html>`
	doc := &trip.Document{TripID: "trip-4", Airline: "DL", Kind: trip.KindHTML, Body: page}

	record, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceExactFlight {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceExactFlight)
	}
	if record.RecordLocator != "GO7RLB" {
		t.Errorf("RecordLocator = %q", record.RecordLocator)
	}
	if record.OriginIATA != "LGA" || record.DestinationIATA != "TQO" {
		t.Errorf("route = %s-%s, want LGA-TQO", record.OriginIATA, record.DestinationIATA)
	}
	if record.DepartureDate != "2026-03-31" {
		t.Errorf("DepartureDate = %q", record.DepartureDate)
	}
}

func TestExtract_BeaconOutranksTextRoutePair(t *testing.T) {
	// The beacon's settled route must survive a stray codeshare pair in
	// the body copy.
	page := `<html><head>
<script src="https://smetrics.delta.com/b/ss/dlprod/1/H.27/s91?v20=LGA&amp;v21=TQO&amp;v22=03/31/2026&amp;v24=GO7RLB"></script>
</head><body>
<h1>Itinerary</h1>
<p>Partner award chart: JFK - LAX</p>
</body></html>`
	doc := &trip.Document{TripID: "trip-5", Airline: "DL", Kind: trip.KindHTML, Body: page}

	record, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if record.OriginIATA != "LGA" || record.DestinationIATA != "TQO" {
		t.Errorf("route = %s-%s, want the beacon's LGA-TQO", record.OriginIATA, record.DestinationIATA)
	}
}

func TestExtract_UnrecognisedHTMLIsUnknown(t *testing.T) {
	doc := &trip.Document{TripID: "trip-3", Kind: trip.KindHTML, Body: "<html><body>Hotel booking for two nights</body></html>"}

	record, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceUnknown {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceUnknown)
	}
}

func TestExtract_RouteMergePriority(t *testing.T) {
	// Three route sources disagree. The page's own route summary block
	// outranks the assembled segments, which outrank the loose pair in
	// the body text.
	withDisplay := `<html><body>
<h1>Booking Confirmation</h1>
<p>Codeshare notice: JFK - LAX</p>
<p>DL 342 BOS - MIA</p>
<p>Departs Mar 31, 2026 7:15 AM</p>
<div class="route-display">LGA &rarr; TQO</div>
</body></html>`

	record, err := Extract(&trip.Document{TripID: "t", Airline: "DL", Kind: trip.KindHTML, Body: withDisplay})
	if err != nil {
		t.Fatal(err)
	}
	if record.OriginIATA != "LGA" || record.DestinationIATA != "TQO" {
		t.Errorf("route = %s-%s, want the summary block's LGA-TQO", record.OriginIATA, record.DestinationIATA)
	}

	withoutDisplay := `<html><body>
<h1>Booking Confirmation</h1>
<p>Codeshare notice: JFK - LAX</p>
<p>DL 342 BOS - MIA</p>
<p>Departs Mar 31, 2026 7:15 AM</p>
</body></html>`

	record, err = Extract(&trip.Document{TripID: "t", Airline: "DL", Kind: trip.KindHTML, Body: withoutDisplay})
	if err != nil {
		t.Fatal(err)
	}
	if record.OriginIATA != "BOS" || record.DestinationIATA != "MIA" {
		t.Errorf("route = %s-%s, want the segments' BOS-MIA", record.OriginIATA, record.DestinationIATA)
	}

	pairOnly := `<html><body>
<h1>Booking Confirmation</h1>
<p>Codeshare notice: JFK - LAX</p>
</body></html>`

	record, err = Extract(&trip.Document{TripID: "t", Kind: trip.KindHTML, Body: pairOnly})
	if err != nil {
		t.Fatal(err)
	}
	if record.OriginIATA != "JFK" || record.DestinationIATA != "LAX" {
		t.Errorf("route = %s-%s, want the text pair's JFK-LAX", record.OriginIATA, record.DestinationIATA)
	}
}

func TestExtract_PasteConfidenceTiers(t *testing.T) {
	high := `Confirmation code: GO7RLB
Passenger: SMITH/JOHN
DL 342 LGA - TQO
Mar 31, 2026 7:15 AM - Mar 31, 2026 11:40 AM`

	record, err := Extract(&trip.Document{TripID: "t", Airline: "DL", Kind: trip.KindText, Body: high})
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceHigh {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceHigh)
	}
	if record.Note != "" {
		t.Errorf("Note = %q, want empty above low", record.Note)
	}

	medium := `Booking ref GO7RLB, passenger name: SMITH`
	record, err = Extract(&trip.Document{TripID: "t", Kind: trip.KindText, Body: medium})
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceMedium {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceMedium)
	}

	low := `Can you price JFK -> LAX for me? Leaving 2026-05-02.`
	record, err = Extract(&trip.Document{TripID: "t", Kind: trip.KindText, Body: low})
	if err != nil {
		t.Fatal(err)
	}
	if record.Confidence != trip.ConfidenceLow {
		t.Errorf("Confidence = %q, want %q", record.Confidence, trip.ConfidenceLow)
	}
	if record.Note == "" {
		t.Error("low confidence requires a non-empty note")
	}
	if record.OriginIATA != "JFK" || record.DestinationIATA != "LAX" {
		t.Errorf("route = %s-%s", record.OriginIATA, record.DestinationIATA)
	}
}

func TestExtract_CallerMisuse(t *testing.T) {
	if _, err := Extract(nil); err != ErrNoDocument {
		t.Errorf("err = %v, want ErrNoDocument", err)
	}
	if _, err := Extract(&trip.Document{Kind: "pdf", Body: "x"}); err != ErrUnknownKind {
		t.Errorf("err = %v, want ErrUnknownKind", err)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := &trip.Document{TripID: "trip-1", Airline: "DL", Kind: trip.KindHTML, Body: deltaManagePage}

	first, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Extract(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not stable:\n%+v\n%+v", first, second)
	}
}
