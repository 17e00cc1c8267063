// Package utils holds small NSE helpers: ticker normalisation and the IST
// trading calendar.
package utils

import (
	"time"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST *time.Location

func init() {
	var err error
	IST, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// tz database missing (scratch containers)
		IST = time.FixedZone("IST", 5*60*60+30*60)
	}
}

// NowIST returns the current time in IST.
func NowIST() time.Time {
	return time.Now().In(IST)
}

// Session is the phase of the NSE trading day.
type Session string

const (
	SessionPreMarket Session = "PRE-MARKET"
	SessionPreOpen   Session = "PRE-OPEN SESSION"
	SessionOpen      Session = "OPEN"
	SessionClosed    Session = "CLOSED"
	SessionWeekend   Session = "CLOSED (Weekend)"
	SessionHoliday   Session = "CLOSED (Holiday)"
)

// clock returns t's date at hh:mm IST.
func clock(t time.Time, hh, mm int) time.Time {
	d := t.In(IST)
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, IST)
}

// SessionAt classifies t against NSE hours: pre-open 09:00, open 09:15,
// close 15:30 IST.
func SessionAt(t time.Time) Session {
	t = t.In(IST)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return SessionWeekend
	}
	if _, ok := HolidayName(t); ok {
		return SessionHoliday
	}
	switch {
	case t.Before(clock(t, 9, 0)):
		return SessionPreMarket
	case t.Before(clock(t, 9, 15)):
		return SessionPreOpen
	case !t.After(clock(t, 15, 30)):
		return SessionOpen
	default:
		return SessionClosed
	}
}

// MarketStatus describes the current session, naming the holiday if any.
func MarketStatus() string {
	now := NowIST()
	s := SessionAt(now)
	if s == SessionHoliday {
		name, _ := HolidayName(now)
		return "CLOSED (" + name + ")"
	}
	return string(s)
}

// HolidayName returns the NSE trading holiday falling on t's IST date.
func HolidayName(t time.Time) (string, bool) {
	name, ok := nseHolidays[t.In(IST).Format("2006-01-02")]
	return name, ok
}

// NSE trading holidays (NSE circular; extend each December).
var nseHolidays = map[string]string{
	"2026-01-26": "Republic Day",
	"2026-02-17": "Mahashivratri",
	"2026-03-10": "Holi",
	"2026-03-30": "Id-ul-Fitr (Ramadan)",
	"2026-04-02": "Ram Navami",
	"2026-04-03": "Good Friday",
	"2026-04-14": "Dr. Ambedkar Jayanti",
	"2026-05-01": "Maharashtra Day",
	"2026-05-25": "Buddha Purnima",
	"2026-06-05": "Id-ul-Zuha (Bakri Id)",
	"2026-07-06": "Muharram",
	"2026-08-15": "Independence Day",
	"2026-08-18": "Parsi New Year",
	"2026-09-04": "Milad-un-Nabi",
	"2026-10-02": "Mahatma Gandhi Jayanti",
	"2026-10-20": "Dussehra",
	"2026-11-09": "Diwali (Laxmi Pujan)",
	"2026-11-10": "Diwali (Balipratipada)",
	"2026-11-30": "Guru Nanak Jayanti",
	"2026-12-25": "Christmas",
}

// FormatDateTimeIST formats t as "2006-01-02 15:04:05 IST".
func FormatDateTimeIST(t time.Time) string {
	return t.In(IST).Format("2006-01-02 15:04:05 IST")
}
