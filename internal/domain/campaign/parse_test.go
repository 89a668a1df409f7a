package campaign_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/propensity/internal/domain/campaign"
	. "github.com/smartystreets/goconvey/convey"
)

const sampleCSV = "\ufeffage;metier;statut_matrimonial;niveau_etudes;mois;campaign;y\n" +
	"30;management;married;tertiary;may;1;yes\n" +
	"45;blue-collar;single;secondary;June;3;no\n" +
	"abc;student;single;secondary;jul;1;no\n" +
	"61;retired;divorced;primary;oct;2.0;YES\n"

func TestParse(t *testing.T) {
	Convey("Given a semicolon separated export", t, func() {
		ds, err := campaign.Parse(strings.NewReader(sampleCSV), campaign.DefaultColumns())

		Convey("Then valid rows become contacts", func() {
			So(err, ShouldBeNil)
			So(ds.Header[0], ShouldEqual, "age")
			So(len(ds.Rows), ShouldEqual, 4)
			So(len(ds.Contacts), ShouldEqual, 3)
			So(ds.Contacts[0], ShouldResemble, campaign.Contact{
				Age: 30, Job: "management", Marital: "married", Education: "tertiary",
				Month: "may", Campaign: 1, Subscribed: true,
			})
			So(ds.Contacts[1].Month, ShouldEqual, "jun")
			So(ds.Contacts[1].Subscribed, ShouldBeFalse)
			So(ds.Contacts[2].Campaign, ShouldEqual, 2)
			So(ds.Contacts[2].Subscribed, ShouldBeTrue)
		})

		Convey("And the untyped row is reported", func() {
			So(len(ds.Warnings), ShouldEqual, 1)
			So(ds.Warnings[0], ShouldContainSubstring, "line 4")
		})

		Convey("When previewing", func() {
			p := ds.Head(2)

			Convey("Then only the requested rows are returned", func() {
				So(len(p.Rows), ShouldEqual, 2)
				So(p.Total, ShouldEqual, 4)
				So(p.Rows[1][1], ShouldEqual, "blue-collar")
			})

			Convey("And out of range sizes are clamped", func() {
				So(len(ds.Head(0).Rows), ShouldEqual, 4)
				So(len(ds.Head(500).Rows), ShouldEqual, 4)
			})
		})
	})

	Convey("Given a comma separated export with custom columns", t, func() {
		cols := campaign.DefaultColumns()
		cols.Job = "job"
		cols.Marital = "marital"
		cols.Month = "month"
		cols.Target = "subscribed"
		cols.Positive = "1"
		data := "age,job,marital,month,campaign,subscribed\n52,admin.,married,aug,4,1\n"

		ds, err := campaign.Parse(strings.NewReader(data), cols, campaign.WithDelimiter(','))

		Convey("Then the mapping is honored", func() {
			So(err, ShouldBeNil)
			So(ds.Contacts[0].Job, ShouldEqual, "admin.")
			So(ds.Contacts[0].Subscribed, ShouldBeTrue)
			So(ds.Contacts[0].Education, ShouldEqual, "")
		})
	})

	Convey("Given broken exports", t, func() {
		Convey("When a required column is missing", func() {
			_, err := campaign.Parse(strings.NewReader("age;metier\n1;x\n"), campaign.DefaultColumns())
			So(errors.Is(err, campaign.ErrMissingColumn), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "statut_matrimonial")
		})

		Convey("When the file is empty", func() {
			_, err := campaign.Parse(strings.NewReader(""), campaign.DefaultColumns())
			So(errors.Is(err, campaign.ErrEmptyDataset), ShouldBeTrue)
		})

		Convey("When no row can be typed", func() {
			data := "age;metier;statut_matrimonial;mois;campaign;y\nx;a;b;may;1;no\n"
			_, err := campaign.Parse(strings.NewReader(data), campaign.DefaultColumns())
			So(errors.Is(err, campaign.ErrEmptyDataset), ShouldBeTrue)
		})
	})
}
