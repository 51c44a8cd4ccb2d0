package config_test

import (
	"errors"
	"testing"

	"github.com/okian/gradematch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should carry the matching defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.FuzzyThreshold, convey.ShouldEqual, 65.0)
			convey.So(cfg.PassThreshold, convey.ShouldEqual, 80.0)
			convey.So(cfg.FallbackScore, convey.ShouldEqual, 78.0)
			convey.So(cfg.OutputName, convey.ShouldEqual, "hasil_pencocokan.xlsx")
			convey.So(cfg.NameKeywords, convey.ShouldResemble, []string{"nama", "name"})
			convey.So(cfg.ScoreKeywords, convey.ShouldResemble, []string{"score", "nilai", "skor"})
			convey.So(cfg.IdentifierKeywords, convey.ShouldResemble, []string{"absen", "no", "nomor", "nis", "id"})
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the fuzzy threshold is out of range", func() {
			cfg.FuzzyThreshold = 101

			convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "fuzzy_threshold")
			})
		})

		convey.Convey("When the pass threshold is negative", func() {
			cfg.PassThreshold = -1

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a keyword list is empty", func() {
			cfg.ScoreKeywords = nil

			convey.Convey("Then validation should name the list", func() {
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "score_keywords")
			})
		})

		convey.Convey("When the upload cap is zero", func() {
			cfg.MaxUploadMB = 0

			convey.Convey("Then validation should fail", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
