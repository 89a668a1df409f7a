package report_test

import (
	"testing"

	"github.com/okian/propensity/internal/domain/campaign"
	"github.com/okian/propensity/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

func fixture() []campaign.Contact {
	var out []campaign.Contact
	for i := 0; i < 20; i++ {
		out = append(out, campaign.Contact{
			Age: 30, Job: "management", Marital: "married", Month: "may", Campaign: 1, Subscribed: i%2 == 0,
		})
	}
	for i := 0; i < 20; i++ {
		out = append(out, campaign.Contact{
			Age: 40, Job: "blue-collar", Marital: "single", Month: "jun", Campaign: 12, Subscribed: i < 2,
		})
	}
	out = append(out, campaign.Contact{
		Age: 70, Job: "student", Marital: "divorced", Month: "jan", Campaign: 3, Subscribed: true,
	})
	return out
}

func keys(groups []report.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestBuild(t *testing.T) {
	Convey("Given no contacts", t, func() {
		r := report.Build(nil)

		Convey("Then the report is empty and safe", func() {
			So(r.Overview, ShouldResemble, report.Overview{})
			So(r.ByJob, ShouldBeEmpty)
			So(r.AgeByMarital.Rows, ShouldBeEmpty)
			So(r.Insights, ShouldBeNil)
		})
	})

	Convey("Given a campaign history", t, func() {
		r := report.Build(fixture())

		Convey("Then the overview counts every contact", func() {
			So(r.Overview.Contacts, ShouldEqual, 41)
			So(r.Overview.Subscribed, ShouldEqual, 13)
			So(r.Overview.Rate, ShouldAlmostEqual, 13.0/41.0, 1e-9)
			So(r.Overview.MeanAge, ShouldAlmostEqual, (20*30+20*40+70)/41.0, 1e-9)
		})

		Convey("Then jobs are ranked by conversion", func() {
			So(keys(r.ByJob), ShouldResemble, []string{"student", "management", "blue-collar"})
			So(r.ByJob[1].Rate, ShouldEqual, 0.5)
		})

		Convey("Then fixed dimensions keep their natural order", func() {
			So(keys(r.ByAgeGroup), ShouldResemble, []string{"25-34", "35-44", "65+"})
			So(keys(r.ByMonth), ShouldResemble, []string{"jan", "may", "jun"})
			So(keys(r.ByContactCount), ShouldResemble, []string{"1", "3", "10+"})
		})

		Convey("Then the pivot leaves empty cells nil", func() {
			p := r.AgeByMarital
			So(p.Rows, ShouldResemble, []string{"25-34", "35-44", "65+"})
			So(p.Cols, ShouldResemble, []string{"divorced", "married", "single"})
			So(p.Rates[0][0], ShouldBeNil)
			So(*p.Rates[0][1], ShouldEqual, 0.5)
			So(*p.Rates[2][0], ShouldEqual, 1.0)
		})

		Convey("Then insights describe the strongest segments", func() {
			So(r.Insights[0], ShouldEqual, "41 clients were contacted and 13 subscribed, a conversion rate of 31.7%.")
			So(r.Insights[1], ShouldStartWith, "Management is the most receptive job (50.0%)")
			So(r.Insights, ShouldContain, "Campaigns in May convert best at 50.0% over 20 contacts.")
			So(r.Insights, ShouldContain, "The 25-34 age group is the most responsive (50.0%).")
			So(r.Insights[len(r.Insights)-1], ShouldContainSubstring, "fatigue")
		})
	})
}

func TestBuckets(t *testing.T) {
	Convey("Given age and contact bucketing", t, func() {
		ages := map[int]string{17: "18-24", 18: "18-24", 24: "18-24", 25: "25-34", 64: "55-64", 65: "65+", 99: "65+"}
		for age, want := range ages {
			So(report.AgeGroup(age), ShouldEqual, want)
		}
		calls := map[int]string{0: "1", 1: "1", 9: "9", 10: "10+", 31: "10+"}
		for n, want := range calls {
			So(report.ContactBucket(n), ShouldEqual, want)
		}
	})
}

func TestInsights_GroupsThousands(t *testing.T) {
	Convey("Given a large overview", t, func() {
		r := report.Report{Overview: report.Overview{Contacts: 45211, Subscribed: 5289, Rate: 5289.0 / 45211.0}}

		Convey("Then counts use grouped digits", func() {
			So(report.Insights(r)[0], ShouldStartWith, "45,211 clients were contacted and 5,289 subscribed")
		})
	})
}
