package ingest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/formcast/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const referenceCSV = `team,team_opp,date,season,won,home,pts,fg%,3p%,ft%,trb,ast,stl,blk,tov,pf,pts_opp,fg%_opp,3p%_opp,ft%_opp,trb_opp,ast_opp,stl_opp,blk_opp,tov_opp,pf_opp
NYK,CLE,2016-10-25,2017,False,0.0,88,0.372,0.318,0.8,46,17,6,6,18,22,117,0.461,0.371,0.769,51,28,10,5,14,18
CLE,NYK,2016-10-25,2017,True,1.0,117,0.461,0.371,0.769,51,28,10,5,14,18,88,0.372,0.318,0.8,46,17,6,6,18,22
`

func TestRead(t *testing.T) {
	Convey("Given a CSV in the reference box-score layout", t, func() {
		records, err := Read(context.Background(), strings.NewReader(referenceCSV))

		Convey("Then every row should be parsed", func() {
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 2)

			nyk := records[0]
			So(nyk.Team, ShouldEqual, "NYK")
			So(nyk.Opponent, ShouldEqual, "CLE")
			So(nyk.Date, ShouldEqual, time.Date(2016, 10, 25, 0, 0, 0, 0, time.UTC))
			So(nyk.Season, ShouldEqual, 2017)
			So(nyk.Won, ShouldBeFalse)
			So(nyk.Home, ShouldBeFalse)
			So(nyk.Stats[model.Points], ShouldEqual, 88.0)
			So(nyk.Stats[model.ThreePointPct], ShouldEqual, 0.318)
			So(nyk.HasAllowed, ShouldBeTrue)
			So(nyk.Allowed[model.Points], ShouldEqual, 117.0)
			So(records[1].Won, ShouldBeTrue)
			So(records[1].Home, ShouldBeTrue)
		})
	})

	Convey("Given malformed rows", t, func() {
		input := strings.Replace(referenceCSV, "2016-10-25,2017,True", "25th of October,2017,True", 1)
		input += "BOS,PHI,2016-10-26,2017,maybe,1,1,1,1,1,1,1,1,1,1,1,,,,,,,,,,\n"
		input += "MIA,ORL,2016-10-26,2017,1,0,100,0.5,0.4,0.7,40,20,8,4,12,19,,,,,,,,,,\n"

		records, err := Read(context.Background(), strings.NewReader(input))

		Convey("Then valid rows should be kept and the rest reported", func() {
			So(len(records), ShouldEqual, 2)
			So(records[0].Team, ShouldEqual, "NYK")
			So(records[1].Team, ShouldEqual, "MIA")
			So(records[1].HasAllowed, ShouldBeFalse)

			So(errors.Is(err, model.ErrDataIntegrity), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "line 3")
			So(err.Error(), ShouldContainSubstring, model.KindMalformedDate)
			So(err.Error(), ShouldContainSubstring, "line 4")
			So(err.Error(), ShouldContainSubstring, model.KindMalformedRecord)
			So(Dropped(err), ShouldEqual, 2)
		})
	})

	Convey("Given seasons that are not whole numbers", t, func() {
		input := strings.Replace(referenceCSV, "2016-10-25,2017,False", "2016-10-25,NaN,False", 1)
		input = strings.Replace(input, "2016-10-25,2017,True", "2016-10-25,2016.5,True", 1)
		input += "MIA,ORL,2016-10-26,2017.0,1,0,100,0.5,0.4,0.7,40,20,8,4,12,19,,,,,,,,,,\n"
		input += "BOS,PHI,2016-10-26,+Inf,1,0,100,0.5,0.4,0.7,40,20,8,4,12,19,,,,,,,,,,\n"
		input += "PHI,BOS,2016-10-26,2017,0,1,99,NaN,0.4,0.7,40,20,8,4,12,19,,,,,,,,,,\n"

		records, err := Read(context.Background(), strings.NewReader(input))

		Convey("Then they should be reported as malformed records", func() {
			So(len(records), ShouldEqual, 1)
			So(records[0].Team, ShouldEqual, "MIA")
			So(records[0].Season, ShouldEqual, 2017)

			So(errors.Is(err, model.ErrDataIntegrity), ShouldBeTrue)
			So(Dropped(err), ShouldEqual, 4)
			So(err.Error(), ShouldContainSubstring, `season "NaN"`)
			So(err.Error(), ShouldContainSubstring, `season "2016.5"`)
			So(err.Error(), ShouldContainSubstring, `season "+Inf"`)
			So(err.Error(), ShouldContainSubstring, "line 6")
		})
	})

	Convey("Given no error", t, func() {
		So(Dropped(nil), ShouldEqual, 0)
	})

	Convey("Given a header without required columns", t, func() {
		_, err := Read(context.Background(), strings.NewReader("team,date\nBOS,2020-01-01\n"))

		Convey("Then ErrMissingColumn should be returned", func() {
			So(errors.Is(err, ErrMissingColumn), ShouldBeTrue)
		})
	})

	Convey("Given empty input", t, func() {
		_, err := Read(context.Background(), strings.NewReader(""))
		So(errors.Is(err, ErrEmptyInput), ShouldBeTrue)
	})
}

func TestWrite(t *testing.T) {
	Convey("Given records written in the canonical layout", t, func() {
		in := []model.GameRecord{
			{
				GameID: "g1", Team: "BOS", Opponent: "NYK", Season: 2023, Home: true, Won: true,
				Date:       time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
				Stats:      model.Stats{110, 0.5, 0.4, 0.8, 45, 25, 7, 5, 12, 18},
				Allowed:    model.Stats{101, 0.45, 0.33, 0.75, 41, 22, 6, 3, 14, 20},
				HasAllowed: true,
			},
			{
				GameID: "g2", Team: "NYK", Opponent: "MIA", Season: 2023,
				Date:  time.Date(2023, 1, 4, 0, 0, 0, 0, time.UTC),
				Stats: model.Stats{99, 0.41, 0.3, 0.7, 40, 20, 5, 4, 15, 21},
			},
		}
		var buf bytes.Buffer
		So(Write(&buf, in), ShouldBeNil)

		Convey("Then the header should use canonical names", func() {
			header := strings.SplitN(buf.String(), "\n", 2)[0]
			So(header, ShouldStartWith, "game_id,team,opponent,date,season,home,won,pts,fg_pct")
			So(header, ShouldEndWith, "pf_opp")
		})

		Convey("And reading it back should reproduce the records", func() {
			out, err := Read(context.Background(), &buf)
			So(err, ShouldBeNil)
			So(out, ShouldResemble, in)
		})
	})
}
